package codec

import (
	"fmt"
	"io"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialect"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/frame"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
)

// DecodeError marks a malformed frame. The live stream skips these; only
// the per-frame drop counter records them.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Identity is the sys:comp pair stamped on outgoing frames.
type Identity struct {
	SystemID    uint8
	ComponentID uint8
}

// ReadWriter frames and decodes MAVLink over a byte stream. It wraps
// gomavlib's frame layer with the common dialect and produces envelopes
// timestamped at receipt.
type ReadWriter struct {
	ident Identity
	drw   *dialect.ReadWriter
	frw   *frame.ReadWriter
	now   func() time.Time
}

// NewReadWriter builds a codec over rw, writing frames as ident.
func NewReadWriter(rw io.ReadWriter, ident Identity) (*ReadWriter, error) {
	drw := &dialect.ReadWriter{Dialect: common.Dialect}
	if err := drw.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize dialect: %w", err)
	}

	c := &ReadWriter{ident: ident, drw: drw, now: time.Now}
	if err := c.Reset(rw); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset rebuilds the frame layer over rw, discarding any partially parsed
// frame. Called after a transport reconnect.
func (c *ReadWriter) Reset(rw io.ReadWriter) error {
	frw := &frame.ReadWriter{
		ByteReadWriter: rw,
		DialectRW:      c.drw,
		OutVersion:     frame.V2,
		OutSystemID:    c.ident.SystemID,
		OutComponentID: c.ident.ComponentID,
	}
	if err := frw.Initialize(); err != nil {
		return fmt.Errorf("initialize frame codec: %w", err)
	}
	c.frw = frw
	return nil
}

// Read blocks until the next frame decodes and returns it as an envelope.
// Errors are returned raw; the transport layer classifies them against the
// underlying byte stream's state.
func (c *ReadWriter) Read() (*envelope.Envelope, error) {
	fr, err := c.frw.Read()
	if err != nil {
		return nil, err
	}

	msg := fr.GetMessage()
	id := msg.GetID()
	return &envelope.Envelope{
		Timestamp:   c.now(),
		SystemID:    fr.GetSystemID(),
		ComponentID: fr.GetComponentID(),
		Sequence:    fr.GetSequenceNumber(),
		MessageID:   id,
		MessageName: NameForID(id),
		Fields:      Fields(msg),
	}, nil
}

// WriteMessage encodes and sends one message under the configured identity.
func (c *ReadWriter) WriteMessage(msg message.Message) error {
	return c.frw.WriteMessage(msg)
}

