package transport

import (
	"errors"
	"fmt"
)

// ErrTimeout reports that no frame arrived within the Receive timeout.
var ErrTimeout = errors.New("receive timed out")

// ErrEndOfStream reports that a file transport ran out of data.
var ErrEndOfStream = errors.New("end of stream")

// ErrClosed reports use of a closed transport.
var ErrClosed = errors.New("transport closed")

// ConnectionError is a connect-time failure. Fatal before the dashboard
// starts.
type ConnectionError struct {
	Spec string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Spec, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransportError is a post-connect I/O failure that survived the retry
// policy. The link is considered down afterwards.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
