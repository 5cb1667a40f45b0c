package replay

import (
	"context"
	"time"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
)

// Player drives a Session from its own goroutine, delivering records
// on Out with the recorded gaps scaled by the session speed. Control
// methods enqueue closures that Run executes between waits, so a
// pending gap can always be interrupted without losing the record
// under the cursor.
type Player struct {
	session *Session
	out     chan *envelope.Envelope
	cmds    chan func(context.Context)
	onSeek  func()
}

// NewPlayer wraps a session. onSeek fires whenever the cursor moves
// somewhere other than straight playback, so derived state (rates,
// counters) can be rebuilt from the new position. May be nil.
func NewPlayer(session *Session, onSeek func()) *Player {
	if onSeek == nil {
		onSeek = func() {}
	}
	return &Player{
		session: session,
		out:     make(chan *envelope.Envelope),
		cmds:    make(chan func(context.Context), 16),
		onSeek:  onSeek,
	}
}

// Out delivers replayed records in journal order.
func (p *Player) Out() <-chan *envelope.Envelope { return p.out }

func (p *Player) Session() *Session { return p.session }

// Run blocks until ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	stopTimer(timer)

	for {
		if !p.session.Playing() {
			select {
			case <-ctx.Done():
				return
			case cmd := <-p.cmds:
				cmd(ctx)
			}
			continue
		}

		if p.session.AtEnd() {
			p.session.SetPlaying(false)
			continue
		}

		delay := time.Duration(float64(p.session.PendingDelay()) / p.session.Speed())
		timer.Reset(delay)
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case cmd := <-p.cmds:
			// The cursor has not advanced, so interrupting the wait
			// cannot drop or duplicate a record.
			stopTimer(timer)
			cmd(ctx)
		case <-timer.C:
			p.deliver(ctx, p.session.Step())
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (p *Player) deliver(ctx context.Context, env *envelope.Envelope) {
	if env == nil {
		return
	}
	select {
	case p.out <- env:
	case <-ctx.Done():
	}
}

func (p *Player) do(fn func(context.Context)) {
	p.cmds <- fn
}

// TogglePlay flips between playing and paused. Toggling play at the
// end of the recording rewinds to the start first.
func (p *Player) TogglePlay() {
	p.do(func(ctx context.Context) {
		if p.session.Playing() {
			p.session.SetPlaying(false)
			return
		}
		if p.session.AtEnd() {
			p.session.SeekFirst()
			p.onSeek()
		}
		p.session.SetPlaying(true)
	})
}

func (p *Player) Pause() {
	p.do(func(ctx context.Context) {
		p.session.SetPlaying(false)
	})
}

// StepForward delivers the record under the cursor while paused.
func (p *Player) StepForward() {
	p.do(func(ctx context.Context) {
		if p.session.Playing() {
			return
		}
		p.deliver(ctx, p.session.Step())
	})
}

// StepBack moves the cursor one record backwards while paused.
func (p *Player) StepBack() {
	p.do(func(ctx context.Context) {
		if p.session.Playing() {
			return
		}
		p.session.CursorBack()
		p.onSeek()
	})
}

func (p *Player) SeekFirst() {
	p.do(func(ctx context.Context) {
		p.session.SetPlaying(false)
		p.session.SeekFirst()
		p.onSeek()
	})
}

func (p *Player) SeekLast() {
	p.do(func(ctx context.Context) {
		p.session.SetPlaying(false)
		p.session.SeekLast()
		p.onSeek()
	})
}

func (p *Player) SpeedUp() {
	p.do(func(ctx context.Context) {
		p.session.SetSpeed(p.session.Speed() * 2)
	})
}

func (p *Player) SlowDown() {
	p.do(func(ctx context.Context) {
		p.session.SetSpeed(p.session.Speed() / 2)
	})
}
