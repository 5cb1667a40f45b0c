package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"time"
)

// link is the byte-level half of a transport: an io.ReadWriter with a read
// deadline and a per-kind retry policy. The codec layer sits on top and
// never sees connection management.
type link interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error

	// setDeadline sets the absolute deadline for subsequent reads.
	setDeadline(t time.Time)
	// reconnect re-establishes a stream link after a read error.
	reconnect() error
	// packet reports whether read errors are transient (datagram links).
	packet() bool
	// takeReadErr returns and clears the last I/O-level read error. The
	// codec may wrap errors opaquely, so Receive classifies against this.
	takeReadErr() error
}

var errReconnectUnsupported = errors.New("reconnect not supported")

// ioState tracks the last I/O error a link's Read saw, so the transport can
// tell I/O failures apart from codec decode failures.
type ioState struct {
	mu      sync.Mutex
	readErr error
}

func (s *ioState) noteReadErr(err error) {
	s.mu.Lock()
	s.readErr = err
	s.mu.Unlock()
}

func (s *ioState) takeReadErr() error {
	s.mu.Lock()
	err := s.readErr
	s.readErr = nil
	s.mu.Unlock()
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
