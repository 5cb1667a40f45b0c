package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInputChars(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want KeyEvent
	}{
		{"letter", []byte{'q'}, KeyEvent{Key: 'q', Type: KeyChar}},
		{"slash", []byte{'/'}, KeyEvent{Key: '/', Type: KeyChar}},
		{"space", []byte{' '}, KeyEvent{Key: ' ', Type: KeyChar}},
		{"ctrl-c", []byte{3}, KeyEvent{Key: 3, Type: KeyChar}},
		{"enter-cr", []byte{'\r'}, KeyEvent{Type: KeyEnter}},
		{"enter-lf", []byte{'\n'}, KeyEvent{Type: KeyEnter}},
		{"backspace-del", []byte{127}, KeyEvent{Type: KeyBackspace}},
		{"backspace-bs", []byte{8}, KeyEvent{Type: KeyBackspace}},
		{"escape", []byte{27}, KeyEvent{Key: 27, Type: KeyEscape}},
		{"up", []byte{27, '[', 'A'}, KeyEvent{Type: KeyUp}},
		{"down", []byte{27, '[', 'B'}, KeyEvent{Type: KeyDown}},
		{"right", []byte{27, '[', 'C'}, KeyEvent{Type: KeyRight}},
		{"left", []byte{27, '[', 'D'}, KeyEvent{Type: KeyLeft}},
		{"pageup", []byte{27, '[', '5', '~'}, KeyEvent{Type: KeyPageUp}},
		{"pagedown", []byte{27, '[', '6', '~'}, KeyEvent{Type: KeyPageDown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := parseInput(tt.in)
			require.NotNil(t, event)
			assert.Equal(t, tt.want, *event)
		})
	}
}

func TestParseInputIgnoresUnknownSequences(t *testing.T) {
	assert.Nil(t, parseInput(nil))
	assert.Nil(t, parseInput([]byte{27, '[', 'Z'}))
	assert.Nil(t, parseInput([]byte{27, 'O'}))
}
