package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
)

func collect(t *testing.T, out <-chan *envelope.Envelope, n int, timeout time.Duration) []*envelope.Envelope {
	t.Helper()
	var got []*envelope.Envelope
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case env := <-out:
			got = append(got, env)
		case <-deadline:
			t.Fatalf("timed out after %d of %d records", len(got), n)
		}
	}
	return got
}

func TestPlayerPlaysInOrderAndAutoPauses(t *testing.T) {
	path := writeJournal(t, 0, 40*time.Millisecond, 100*time.Millisecond)
	s, err := LoadSession(path)
	require.NoError(t, err)

	p := NewPlayer(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.TogglePlay()
	got := collect(t, p.Out(), 3, 2*time.Second)
	for i, env := range got {
		assert.Equal(t, uint8(i), env.Sequence)
	}

	assert.Eventually(t, func() bool { return !s.Playing() }, time.Second, 10*time.Millisecond)
	assert.True(t, s.AtEnd())
}

func TestPlayerPauseMidWaitLosesNothing(t *testing.T) {
	path := writeJournal(t, 0, 500*time.Millisecond)
	s, err := LoadSession(path)
	require.NoError(t, err)

	p := NewPlayer(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.TogglePlay()
	first := collect(t, p.Out(), 1, time.Second)[0]
	assert.Equal(t, uint8(0), first.Sequence)

	// Interrupt the 500ms gap before the second record.
	p.Pause()
	assert.Eventually(t, func() bool { return !s.Playing() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Cursor())

	// Nothing was skipped: stepping delivers exactly the second record.
	p.StepForward()
	second := collect(t, p.Out(), 1, time.Second)[0]
	assert.Equal(t, uint8(1), second.Sequence)
	assert.True(t, s.AtEnd())
}

func TestPlayerStepBackAndSeekFireOnSeek(t *testing.T) {
	path := writeJournal(t, 0, 10*time.Millisecond, 20*time.Millisecond)
	s, err := LoadSession(path)
	require.NoError(t, err)

	seeks := make(chan struct{}, 8)
	p := NewPlayer(s, func() { seeks <- struct{}{} })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.StepForward()
	collect(t, p.Out(), 1, time.Second)

	p.StepBack()
	select {
	case <-seeks:
	case <-time.After(time.Second):
		t.Fatal("StepBack did not report a cursor move")
	}
	assert.Equal(t, 0, s.Cursor())

	p.SeekLast()
	select {
	case <-seeks:
	case <-time.After(time.Second):
		t.Fatal("SeekLast did not report a cursor move")
	}
	assert.True(t, s.AtEnd())
	assert.False(t, s.Playing())

	// Toggling play at the end rewinds and replays from the start.
	p.TogglePlay()
	got := collect(t, p.Out(), 3, 2*time.Second)
	assert.Equal(t, uint8(0), got[0].Sequence)
}

func TestPlayerSpeedControl(t *testing.T) {
	path := writeJournal(t, 0)
	s, err := LoadSession(path)
	require.NoError(t, err)

	p := NewPlayer(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	for i := 0; i < 10; i++ {
		p.SpeedUp()
	}
	assert.Eventually(t, func() bool { return s.Speed() == MaxSpeed }, time.Second, 5*time.Millisecond)

	for i := 0; i < 10; i++ {
		p.SlowDown()
	}
	assert.Eventually(t, func() bool { return s.Speed() == MinSpeed }, time.Second, 5*time.Millisecond)
}
