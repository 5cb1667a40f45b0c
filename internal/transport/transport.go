// Package transport unifies the six MAVLink connection kinds behind a
// single duplex message stream: open, receive with timeout, send, close.
package transport

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/sanderkohnstamm/mavshark/internal/codec"
	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/util"
)

// Options tune transport behavior beyond the connection spec itself.
type Options struct {
	// Identity stamps outgoing frames (heartbeats).
	Identity codec.Identity
	// Follow makes a file transport tail the capture instead of ending
	// the stream at EOF.
	Follow bool
}

// Transport is one open connection delivering decoded envelopes and
// accepting outbound messages.
type Transport struct {
	spec  Spec
	ident codec.Identity
	link  link
	codec *codec.ReadWriter

	sendMu  sync.Mutex
	retried bool
	alive   atomic.Bool
	closed  atomic.Bool
}

// Open establishes the connection described by spec. Failures here are
// fatal and reported before the dashboard starts.
func Open(spec Spec, opts Options) (*Transport, error) {
	l, err := openLink(spec, opts)
	if err != nil {
		return nil, &ConnectionError{Spec: spec.String(), Err: err}
	}

	cdc, err := codec.NewReadWriter(l, opts.Identity)
	if err != nil {
		l.Close()
		return nil, &ConnectionError{Spec: spec.String(), Err: err}
	}

	t := &Transport{spec: spec, ident: opts.Identity, link: l, codec: cdc}
	t.alive.Store(true)
	util.LogInfof("opened %s", spec)
	return t, nil
}

func openLink(spec Spec, opts Options) (link, error) {
	switch spec.Kind {
	case KindTCPListen:
		return listenTCP(spec)
	case KindTCPConnect:
		return dialTCP(spec)
	case KindUDPListen:
		return listenUDP(spec)
	case KindUDPConnect:
		return dialUDP(spec, false)
	case KindUDPBroadcast:
		return dialUDP(spec, true)
	case KindSerial:
		return openSerial(spec)
	case KindFile:
		return openFile(spec, opts.Follow)
	default:
		return nil, errors.New("unknown connection kind")
	}
}

// Receive blocks until the next envelope decodes, the timeout passes, or
// the link fails. Decode failures return a *codec.DecodeError and leave the
// stream running; datagram read errors are skipped; a stream read error
// gets one reconnect attempt before surfacing as a *TransportError.
func (t *Transport) Receive(timeout time.Duration) (*envelope.Envelope, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	deadline := time.Now().Add(timeout)
	t.link.setDeadline(deadline)

	for {
		env, err := t.codec.Read()
		if err == nil {
			t.retried = false
			return env, nil
		}

		ioErr := t.link.takeReadErr()
		switch {
		case t.closed.Load():
			return nil, ErrClosed

		case ioErr == nil:
			return nil, &codec.DecodeError{Err: err}

		case errors.Is(ioErr, ErrEndOfStream):
			return nil, ErrEndOfStream

		case isTimeout(ioErr):
			return nil, ErrTimeout

		case t.link.packet():
			// Datagram read errors are transient; keep reading
			// until the caller's deadline.
			util.LogDebugf("transient read error on %s: %v", t.spec, ioErr)
			if time.Now().After(deadline) {
				return nil, ErrTimeout
			}

		default:
			if !t.retried {
				t.retried = true
				if rerr := t.reconnect(); rerr == nil {
					continue
				} else {
					util.LogErrorf("reconnect of %s failed: %v", t.spec, rerr)
				}
			}
			t.alive.Store(false)
			return nil, &TransportError{Op: "receive", Err: ioErr}
		}
	}
}

func (t *Transport) reconnect() error {
	if err := t.link.reconnect(); err != nil {
		return err
	}
	// The old connection may have left a partial frame behind; reset the
	// codec so parsing restarts at a clean boundary.
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	return t.codec.Reset(t.link)
}

// SendMessage encodes and sends one message. The send path is available
// even before any inbound data, except on file transports.
func (t *Transport) SendMessage(msg message.Message) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if !t.spec.Live() {
		return &TransportError{Op: "send", Err: errSendUnsupported}
	}
	t.sendMu.Lock()
	defer t.sendMu.Unlock()
	if err := t.codec.WriteMessage(msg); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// Alive reports link liveness; false once a stream link exhausted its
// reconnect attempt.
func (t *Transport) Alive() bool {
	return t.alive.Load() && !t.closed.Load()
}

// Spec returns the parsed connection spec this transport was opened with.
func (t *Transport) Spec() Spec { return t.spec }

func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.link.Close()
}
