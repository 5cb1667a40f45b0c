package codec

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
)

// The registry maps between numeric message ids and the names the MAVLink
// definitions use, and remembers the wire order of each message's fields.
// It is built once from the common dialect.
var (
	nameByID   = map[uint32]string{}
	idByName   = map[string]uint32{}
	fieldsByID = map[uint32][]string{}
)

func init() {
	for _, msg := range common.Dialect.Messages {
		t := reflect.TypeOf(msg)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		name := messageName(t)
		id := msg.GetID()
		nameByID[id] = name
		idByName[name] = id
		fieldsByID[id] = fieldNames(t)
	}
}

// NameForID returns the MAVLink name of a message id. Unknown ids get a
// synthetic UNKNOWN_<id> name so they stay distinguishable in the dashboard.
func NameForID(id uint32) string {
	if name, ok := nameByID[id]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", id)
}

// IDForName resolves a MAVLink message name (case-insensitive) to its id.
func IDForName(name string) (uint32, bool) {
	id, ok := idByName[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

// FieldOrder returns the wire-order field names of a message id, or nil for
// unknown ids.
func FieldOrder(id uint32) []string {
	return fieldsByID[id]
}

// messageName derives the MAVLink name from a gomavlib struct type, e.g.
// MessageGpsRawInt -> GPS_RAW_INT. gomavlib generates struct names by
// camel-casing on underscores, so the inverse inserts an underscore before
// every interior uppercase letter.
func messageName(t reflect.Type) string {
	return toUpperSnake(strings.TrimPrefix(t.Name(), "Message"))
}

func fieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		names = append(names, fieldName(t.Field(i)))
	}
	return names
}

// fieldName derives the wire name of a struct field, honoring gomavlib's
// mavname tag for fields whose Go name is not mechanically derivable
// (e.g. Type tagged mavname:"type" on HEARTBEAT).
func fieldName(f reflect.StructField) string {
	if tag := f.Tag.Get("mavname"); tag != "" {
		return tag
	}
	return strings.ToLower(toUpperSnake(f.Name))
}

func toUpperSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
