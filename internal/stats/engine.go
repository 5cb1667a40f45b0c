// Package stats maintains per-sender message counters and decayed
// receive rates for the dashboard table.
package stats

import (
	"math"
	"sort"
	"sync"
	"time"
)

// rateHalfLife controls how quickly the displayed rate forgets old
// traffic. A stream that stops is halved every interval.
const rateHalfLife = 3 * time.Second

// Key identifies one row of the table: a message type from one sender.
type Key struct {
	SystemID    uint8
	ComponentID uint8
	MessageID   uint32
}

// Entry is a snapshot row. Rate is decayed to the snapshot instant.
type Entry struct {
	Key      Key
	Name     string
	Count    uint64
	Rate     float64
	LastSeen time.Time
}

// SortMode selects the snapshot ordering.
type SortMode int

const (
	SortAlphabetical SortMode = iota
	SortRate
	SortCount
)

func (m SortMode) String() string {
	switch m {
	case SortRate:
		return "rate"
	case SortCount:
		return "count"
	default:
		return "name"
	}
}

// Next cycles alphabetical -> rate -> count -> alphabetical.
func (m SortMode) Next() SortMode {
	return (m + 1) % 3
}

type counter struct {
	name     string
	count    uint64
	rate     float64
	lastSeen time.Time
}

// Engine accumulates observations. All methods are safe for
// concurrent use.
type Engine struct {
	mu       sync.RWMutex
	counters map[Key]*counter
	drops    uint64
	now      func() time.Time
}

func NewEngine() *Engine {
	return &Engine{
		counters: make(map[Key]*counter),
		now:      time.Now,
	}
}

// SetNow overrides the engine's notion of the present. Replay pins it
// to the playback position so rates and idle times are computed in
// journal time; a journal recorded last week then plays back with the
// same rates it showed live.
func (e *Engine) SetNow(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// Observe records one received message for the given key.
func (e *Engine) Observe(key Key, name string, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.counters[key]
	if !ok {
		e.counters[key] = &counter{name: name, count: 1, lastSeen: at}
		return
	}

	dt := at.Sub(c.lastSeen).Seconds()
	if dt > 0 {
		inst := 1.0 / dt
		alpha := 1.0 - math.Pow(0.5, dt/rateHalfLife.Seconds())
		c.rate += alpha * (inst - c.rate)
	}
	c.count++
	c.lastSeen = at
}

// CountDrop records one undecodable frame.
func (e *Engine) CountDrop() {
	e.mu.Lock()
	e.drops++
	e.mu.Unlock()
}

// Drops reports the number of undecodable frames seen so far.
func (e *Engine) Drops() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.drops
}

// Snapshot returns the current table sorted by mode. Rates are decayed
// to the snapshot instant without mutating the stored state, so idle
// streams visibly fall toward zero between observations.
func (e *Engine) Snapshot(mode SortMode) []Entry {
	e.mu.RLock()
	now := e.now()
	entries := make([]Entry, 0, len(e.counters))
	for key, c := range e.counters {
		rate := c.rate
		if idle := now.Sub(c.lastSeen).Seconds(); idle > 0 {
			rate *= math.Pow(0.5, idle/rateHalfLife.Seconds())
		}
		entries = append(entries, Entry{
			Key:      key,
			Name:     c.name,
			Count:    c.count,
			Rate:     rate,
			LastSeen: c.lastSeen,
		})
	}
	e.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch mode {
		case SortRate:
			if a.Rate != b.Rate {
				return a.Rate > b.Rate
			}
		case SortCount:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Key.SystemID != b.Key.SystemID {
			return a.Key.SystemID < b.Key.SystemID
		}
		return a.Key.ComponentID < b.Key.ComponentID
	})
	return entries
}

// Reset discards all counters and the drop count. Used when replay
// seeks so the table reflects only traffic after the seek point.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.counters = make(map[Key]*counter)
	e.drops = 0
	e.mu.Unlock()
}
