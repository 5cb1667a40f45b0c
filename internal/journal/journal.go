// Package journal defines the on-disk recording format: one JSON
// object per line, one line per message.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bytedance/sonic"

	"github.com/sanderkohnstamm/mavshark/internal/codec"
	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
)

// Record is the serialized form of one received message. Field values
// are stored as JSON-basic types; the dialect's declared field order is
// restored on load.
type Record struct {
	Timestamp   time.Time              `json:"timestamp"`
	SystemID    uint8                  `json:"system_id"`
	ComponentID uint8                  `json:"component_id"`
	Sequence    uint8                  `json:"sequence"`
	MessageID   uint32                 `json:"message_id"`
	MessageName string                 `json:"message_name"`
	Fields      map[string]interface{} `json:"fields"`
}

// decodeAPI keeps numbers as json.Number instead of float64, so
// uint64 field values above 2^53 (time_usec, onboard counters) survive
// the round trip exactly.
var decodeAPI = sonic.Config{UseNumber: true}.Froze()

// FormatError reports a line of a journal file that could not be
// parsed. Loading is strict: one bad line fails the whole load.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("journal %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// FromEnvelope converts a received message into its journal form.
func FromEnvelope(env *envelope.Envelope) Record {
	fields := make(map[string]interface{}, len(env.Fields))
	for _, f := range env.Fields {
		fields[f.Name] = f.Value
	}
	return Record{
		Timestamp:   env.Timestamp,
		SystemID:    env.SystemID,
		ComponentID: env.ComponentID,
		Sequence:    env.Sequence,
		MessageID:   env.MessageID,
		MessageName: env.MessageName,
		Fields:      fields,
	}
}

// Envelope reconstructs the in-memory form. Fields known to the
// dialect come back in declaration order; anything left over is
// appended alphabetically so reconstruction stays deterministic.
func (r Record) Envelope() *envelope.Envelope {
	fields := make([]envelope.Field, 0, len(r.Fields))
	seen := make(map[string]bool, len(r.Fields))
	for _, name := range codec.FieldOrder(r.MessageID) {
		if v, ok := r.Fields[name]; ok {
			fields = append(fields, envelope.Field{Name: name, Value: v})
			seen[name] = true
		}
	}
	var rest []string
	for name := range r.Fields {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		fields = append(fields, envelope.Field{Name: name, Value: r.Fields[name]})
	}

	return &envelope.Envelope{
		Timestamp:   r.Timestamp,
		SystemID:    r.SystemID,
		ComponentID: r.ComponentID,
		Sequence:    r.Sequence,
		MessageID:   r.MessageID,
		MessageName: r.MessageName,
		Fields:      fields,
	}
}

// Encode renders the record as one newline-terminated JSON line.
func (r Record) Encode() ([]byte, error) {
	data, err := sonic.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Load reads an entire journal file. Blank lines are skipped; any
// unparseable line aborts the load with a FormatError naming it.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec Record
		if err := decodeAPI.Unmarshal(data, &rec); err != nil {
			return nil, &FormatError{Path: path, Line: line, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
