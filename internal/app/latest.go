package app

import (
	"sync"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/stats"
)

// LatestStore keeps the most recent decoded field set per table key,
// backing the detail pane.
type LatestStore struct {
	mu sync.RWMutex
	m  map[stats.Key][]envelope.Field
}

func NewLatestStore() *LatestStore {
	return &LatestStore{m: make(map[stats.Key][]envelope.Field)}
}

func (s *LatestStore) Set(key stats.Key, fields []envelope.Field) {
	s.mu.Lock()
	s.m[key] = fields
	s.mu.Unlock()
}

func (s *LatestStore) Get(key stats.Key) ([]envelope.Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.m[key]
	return fields, ok
}

// Reset drops everything, used when replay seeks backwards.
func (s *LatestStore) Reset() {
	s.mu.Lock()
	s.m = make(map[stats.Key][]envelope.Field)
	s.mu.Unlock()
}
