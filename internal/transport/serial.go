package transport

import (
	"os"
	"sync"
	"time"

	"go.bug.st/serial"
)

// serialLink reads framed bytes from a serial device. go.bug.st/serial
// reports a read timeout as (0, nil), which is remapped to a deadline error
// so the codec's buffered reader never sees a zero-progress read.
type serialLink struct {
	ioState
	port serial.Port

	mu       sync.Mutex
	deadline time.Time
}

func openSerial(spec Spec) (*serialLink, error) {
	port, err := serial.Open(spec.Device, &serial.Mode{BaudRate: spec.Baud})
	if err != nil {
		return nil, err
	}
	return &serialLink{port: port}, nil
}

func (l *serialLink) Read(p []byte) (int, error) {
	remaining := time.Until(l.readDeadline())
	if remaining <= 0 {
		l.noteReadErr(os.ErrDeadlineExceeded)
		return 0, os.ErrDeadlineExceeded
	}
	l.port.SetReadTimeout(remaining)

	n, err := l.port.Read(p)
	if err != nil {
		l.noteReadErr(err)
		return n, err
	}
	if n == 0 {
		l.noteReadErr(os.ErrDeadlineExceeded)
		return 0, os.ErrDeadlineExceeded
	}
	return n, nil
}

func (l *serialLink) Write(p []byte) (int, error) {
	return l.port.Write(p)
}

func (l *serialLink) setDeadline(t time.Time) {
	l.mu.Lock()
	l.deadline = t
	l.mu.Unlock()
}

func (l *serialLink) readDeadline() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deadline
}

func (l *serialLink) reconnect() error { return errReconnectUnsupported }
func (l *serialLink) packet() bool     { return false }
func (l *serialLink) Close() error     { return l.port.Close() }
