package codec

import (
	"fmt"
	"reflect"

	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
)

// Fields extracts the decoded field values of a message in wire order.
// Values are normalized to JSON-basic types so a journal record round-trips
// without dialect-specific enum types.
func Fields(msg message.Message) []envelope.Field {
	if raw, ok := msg.(*message.MessageRaw); ok {
		return []envelope.Field{
			{Name: "payload", Value: fmt.Sprintf("%x", raw.Payload)},
		}
	}

	v := reflect.ValueOf(msg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	fields := make([]envelope.Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields = append(fields, envelope.Field{
			Name:  fieldName(t.Field(i)),
			Value: normalize(v.Field(i)),
		})
	}
	return fields
}

func normalize(v reflect.Value) interface{} {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Array, reflect.Slice:
		out := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = normalize(v.Index(i))
		}
		return out
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
