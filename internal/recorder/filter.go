package recorder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sanderkohnstamm/mavshark/internal/codec"
)

// ConfigError reports a recording filter token that resolves to
// neither a numeric message id nor a dialect message name.
type ConfigError struct {
	Token string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("unknown message type %q in recording filter", e.Token)
}

// Filter selects which message ids are written to the journal. The
// zero filter accepts everything.
type Filter struct {
	ids map[uint32]bool
}

// ParseFilter resolves a comma-separated list of message names and
// numeric ids. An empty input yields the accept-all filter.
func ParseFilter(raw string) (Filter, error) {
	ids := make(map[uint32]bool)
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if id, err := strconv.ParseUint(token, 10, 32); err == nil {
			ids[uint32(id)] = true
			continue
		}
		id, ok := codec.IDForName(token)
		if !ok {
			return Filter{}, &ConfigError{Token: token}
		}
		ids[id] = true
	}
	if len(ids) == 0 {
		return Filter{}, nil
	}
	return Filter{ids: ids}, nil
}

// Match reports whether a message id passes the filter.
func (f Filter) Match(id uint32) bool {
	if f.ids == nil {
		return true
	}
	return f.ids[id]
}

// Describe renders the filter for the status line.
func (f Filter) Describe() string {
	if f.ids == nil {
		return "all"
	}
	names := make([]string, 0, len(f.ids))
	for id := range f.ids {
		names = append(names, codec.NameForID(id))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
