// Package replay plays recorded journals back with their original
// timing, under interactive cursor and speed control.
package replay

import (
	"fmt"
	"sync"
	"time"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/journal"
)

const (
	MinSpeed = 0.25
	MaxSpeed = 8.0
)

// Session holds a loaded journal and the playback cursor. The cursor
// ranges over [0, Len()]: it names the next record to deliver, with
// Len() meaning the end of the recording.
type Session struct {
	mu      sync.Mutex
	records []journal.Record
	cursor  int
	playing bool
	speed   float64
}

// LoadSession reads a journal file. An empty journal is an error:
// there is nothing to play.
func LoadSession(path string) (*Session, error) {
	records, err := journal.Load(path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("journal %s contains no records", path)
	}
	return &Session{records: records, speed: 1.0}, nil
}

func (s *Session) Len() int {
	return len(s.records)
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) AtEnd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= len(s.records)
}

// PendingDelay is the recorded gap before the record under the
// cursor, unscaled. The first record has no gap, and out-of-order
// timestamps clamp to zero rather than waiting backwards.
func (s *Session) PendingDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingDelayLocked()
}

func (s *Session) pendingDelayLocked() time.Duration {
	if s.cursor <= 0 || s.cursor >= len(s.records) {
		return 0
	}
	d := s.records[s.cursor].Timestamp.Sub(s.records[s.cursor-1].Timestamp)
	if d < 0 {
		return 0
	}
	return d
}

// Step delivers the record under the cursor and advances past it.
// Returns nil at the end of the recording.
func (s *Session) Step() *envelope.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.records) {
		return nil
	}
	env := s.records[s.cursor].Envelope()
	s.cursor++
	return env
}

// CursorBack moves the cursor one record backwards without delivering
// anything.
func (s *Session) CursorBack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *Session) SeekFirst() { s.SeekIndex(0) }

func (s *Session) SeekLast() { s.SeekIndex(len(s.records)) }

// SeekIndex moves the cursor, clamping into [0, Len()].
func (s *Session) SeekIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i > len(s.records) {
		i = len(s.records)
	}
	s.cursor = i
}

func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Session) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

func (s *Session) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// SetSpeed clamps into [MinSpeed, MaxSpeed].
func (s *Session) SetSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	s.speed = speed
}
