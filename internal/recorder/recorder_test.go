package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/journal"
)

func TestParseFilterEmptyAcceptsAll(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.True(t, f.Match(0))
	assert.True(t, f.Match(24))
	assert.True(t, f.Match(999999))
	assert.Equal(t, "all", f.Describe())
}

func TestParseFilterNamesAndIDs(t *testing.T) {
	f, err := ParseFilter("HEARTBEAT,30")
	require.NoError(t, err)
	assert.True(t, f.Match(0))
	assert.True(t, f.Match(30))
	assert.False(t, f.Match(24))
}

func TestParseFilterCaseInsensitive(t *testing.T) {
	f, err := ParseFilter("heartbeat")
	require.NoError(t, err)
	assert.True(t, f.Match(0))
}

func TestParseFilterTokenOrderAndDuplicates(t *testing.T) {
	a, err := ParseFilter("HEARTBEAT,ATTITUDE")
	require.NoError(t, err)
	b, err := ParseFilter("ATTITUDE,HEARTBEAT,ATTITUDE, 0 ")
	require.NoError(t, err)

	for _, id := range []uint32{0, 24, 30} {
		assert.Equal(t, a.Match(id), b.Match(id), "id %d", id)
	}
	assert.Equal(t, a.Describe(), b.Describe())
}

func TestParseFilterUnknownToken(t *testing.T) {
	_, err := ParseFilter("HEARTBEAT,NO_SUCH_MESSAGE")
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "NO_SUCH_MESSAGE", cfgErr.Token)
}

func env(id uint32, name string) *envelope.Envelope {
	return &envelope.Envelope{
		Timestamp:   time.Now(),
		SystemID:    1,
		ComponentID: 1,
		MessageID:   id,
		MessageName: name,
		Fields:      []envelope.Field{{Name: "x", Value: uint64(1)}},
	}
}

func TestRecorderWritesOnlyMatches(t *testing.T) {
	filter, err := ParseFilter("0,30")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.jsonl")
	rec, err := New(path, filter)
	require.NoError(t, err)

	rec.Record(env(0, "HEARTBEAT"))
	rec.Record(env(24, "GPS_RAW_INT"))
	rec.Record(env(30, "ATTITUDE"))
	require.NoError(t, rec.Close())

	assert.Equal(t, uint64(2), rec.Count())
	assert.NoError(t, rec.Err())

	records, err := journal.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "HEARTBEAT", records[0].MessageName)
	assert.Equal(t, "ATTITUDE", records[1].MessageName)
}

func TestRecorderFlushesPerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	rec, err := New(path, Filter{})
	require.NoError(t, err)
	defer rec.Close()

	rec.Record(env(0, "HEARTBEAT"))

	// Visible on disk before Close.
	records, err := journal.Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecorderDisablesAfterWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	rec, err := New(path, Filter{})
	require.NoError(t, err)

	rec.Record(env(0, "HEARTBEAT"))
	require.NoError(t, rec.file.Close())

	// Flush now fails; the recorder latches the error and stops counting.
	rec.Record(env(0, "HEARTBEAT"))
	assert.Error(t, rec.Err())
	assert.Equal(t, uint64(1), rec.Count())

	rec.Record(env(0, "HEARTBEAT"))
	assert.Equal(t, uint64(1), rec.Count())
}
