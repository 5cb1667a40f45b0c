package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanderkohnstamm/mavshark/internal/journal"
)

// writeOldJournal writes a 10 Hz HEARTBEAT stream whose timestamps are
// a day in the past.
func writeOldJournal(t *testing.T, count int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "old.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	at := time.Now().Add(-24 * time.Hour)
	for i := 0; i < count; i++ {
		rec := journal.Record{
			Timestamp:   at,
			SystemID:    1,
			ComponentID: 1,
			Sequence:    uint8(i),
			MessageID:   0,
			MessageName: "HEARTBEAT",
			Fields:      map[string]interface{}{"type": float64(2)},
		}
		data, err := rec.Encode()
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
		at = at.Add(100 * time.Millisecond)
	}
	return path
}

// Replayed statistics must age against the playback position, not the
// wall clock: a day-old journal shows its live rates, not zeros.
func TestReplayStatsUseJournalTime(t *testing.T) {
	path := writeOldJournal(t, 100)

	o, err := NewReplay(&Config{ReplayPath: path, HeartbeatSystemID: -1})
	require.NoError(t, err)

	records, err := journal.Load(path)
	require.NoError(t, err)
	for _, rec := range records {
		o.observe(rec.Envelope())
	}

	model := o.controller.BuildModel()
	require.Len(t, model.Rows, 1)
	assert.InDelta(t, 10.0, model.Rows[0].Rate, 1.5)
	assert.Less(t, model.Rows[0].Age, time.Second)
}

// Seeking resets the table; fresh observations after the seek rebuild
// it at the new playback position.
func TestReplaySeekResetsThenReanchors(t *testing.T) {
	path := writeOldJournal(t, 20)

	o, err := NewReplay(&Config{ReplayPath: path, HeartbeatSystemID: -1})
	require.NoError(t, err)

	records, err := journal.Load(path)
	require.NoError(t, err)
	for _, rec := range records {
		o.observe(rec.Envelope())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.player.Run(ctx)

	o.player.SeekFirst()
	assert.Eventually(t, func() bool {
		return len(o.controller.BuildModel().Rows) == 0
	}, time.Second, 10*time.Millisecond)

	o.observe(records[0].Envelope())
	model := o.controller.BuildModel()
	require.Len(t, model.Rows, 1)
	assert.Equal(t, time.Duration(0), model.Rows[0].Age)
}
