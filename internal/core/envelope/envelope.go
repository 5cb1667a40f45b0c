package envelope

import (
	"fmt"
	"time"
)

// Field is one decoded message field. Fields keep the order the wire
// definition declares them in.
type Field struct {
	Name  string
	Value interface{}
}

// Envelope is one decoded MAVLink message plus receipt metadata. It is
// created by the codec (or rebuilt from a journal record) and immutable
// afterwards. The encoded frame bytes are not retained: everything
// downstream works on the decoded fields, and the journal re-encodes
// from them.
type Envelope struct {
	Timestamp   time.Time
	SystemID    uint8
	ComponentID uint8
	Sequence    uint8
	MessageID   uint32
	MessageName string
	Fields      []Field
}

// Sender returns the sys:comp identity of the message origin.
func (e *Envelope) Sender() string {
	return fmt.Sprintf("%d:%d", e.SystemID, e.ComponentID)
}

// Field looks up a decoded field by name.
func (e *Envelope) Field(name string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
