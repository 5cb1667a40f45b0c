package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sanderkohnstamm/mavshark/internal/codec"
	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/heartbeat"
	"github.com/sanderkohnstamm/mavshark/internal/presentation/display"
	"github.com/sanderkohnstamm/mavshark/internal/presentation/interaction"
	"github.com/sanderkohnstamm/mavshark/internal/recorder"
	"github.com/sanderkohnstamm/mavshark/internal/replay"
	"github.com/sanderkohnstamm/mavshark/internal/stats"
	"github.com/sanderkohnstamm/mavshark/internal/transport"
	"github.com/sanderkohnstamm/mavshark/internal/util"
)

const receiveTimeout = 250 * time.Millisecond

// playbackClock tracks the timestamp of the last delivered journal
// record. In replay mode it replaces the wall clock for the stats
// engine and the age column, so the table reads the same as it did
// when the journal was recorded.
type playbackClock struct {
	mu sync.Mutex
	at time.Time
}

func (p *playbackClock) Set(at time.Time) {
	p.mu.Lock()
	p.at = at
	p.mu.Unlock()
}

func (p *playbackClock) Now() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.at
}

// Orchestrator wires the message source, stats engine, recorder,
// heartbeat injector and dashboard together and runs the event loop.
type Orchestrator struct {
	config *Config

	transport *transport.Transport
	recorder  *recorder.Recorder
	injector  *heartbeat.Injector
	player    *replay.Player

	engine     *stats.Engine
	latest     *LatestStore
	controller *Controller
	terminal   *display.Terminal
	keyboard   *interaction.KeyboardReader

	// playClock is set in replay mode only.
	playClock *playbackClock
}

// NewLive builds an orchestrator around a live or file transport.
// Configuration problems surface before any I/O is attempted.
func NewLive(config *Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	filter, err := recorder.ParseFilter(config.RecordFilter)
	if err != nil {
		return nil, err
	}

	spec, err := transport.ParseSpec(config.ConnectionSpec)
	if err != nil {
		return nil, err
	}

	ident := codec.Identity{SystemID: 255, ComponentID: 1}
	if config.HeartbeatSystemID >= 0 {
		ident = codec.Identity{
			SystemID:    uint8(config.HeartbeatSystemID),
			ComponentID: uint8(config.HeartbeatComponentID),
		}
	}

	tr, err := transport.Open(spec, transport.Options{Identity: ident, Follow: config.Follow})
	if err != nil {
		return nil, err
	}

	o := newOrchestrator(config, spec.String())
	o.transport = tr

	if config.RecordPath != "" {
		rec, err := recorder.New(config.RecordPath, filter)
		if err != nil {
			tr.Close()
			return nil, fmt.Errorf("open recording %s: %w", config.RecordPath, err)
		}
		o.recorder = rec
		o.controller.AttachRecorder(rec)
	}

	if config.HeartbeatSystemID >= 0 {
		if !spec.Live() {
			util.LogWarnf("Heartbeat requested on %s, which cannot send; disabled", spec)
		} else {
			o.injector = heartbeat.NewInjector(tr, heartbeat.GCSMessage())
			o.controller.AttachInjector(o.injector)
		}
	}

	return o, nil
}

// NewReplay builds an orchestrator around a recorded journal.
func NewReplay(config *Config) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	session, err := replay.LoadSession(config.ReplayPath)
	if err != nil {
		return nil, err
	}

	o := newOrchestrator(config, "replay:"+config.ReplayPath)
	o.playClock = &playbackClock{}
	o.engine.SetNow(o.playClock.Now)
	o.controller.clock = o.playClock.Now
	o.player = replay.NewPlayer(session, func() {
		o.engine.Reset()
		o.latest.Reset()
	})
	o.controller.AttachPlayer(o.player)
	return o, nil
}

func newOrchestrator(config *Config, source string) *Orchestrator {
	engine := stats.NewEngine()
	latest := NewLatestStore()
	return &Orchestrator{
		config:     config,
		engine:     engine,
		latest:     latest,
		controller: NewController(engine, latest, source),
		terminal:   display.NewTerminal(),
	}
}

// Run blocks until the user quits or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keyboard, err := interaction.NewKeyboardReader()
	if err != nil {
		return fmt.Errorf("initialize keyboard: %w", err)
	}
	o.keyboard = keyboard
	defer o.keyboard.Close()

	o.terminal.EnterAlternateScreen()
	defer o.terminal.ExitAlternateScreen()

	var envCh <-chan *envelope.Envelope
	if o.player != nil {
		go o.player.Run(ctx)
		envCh = o.player.Out()
	} else {
		ch := make(chan *envelope.Envelope, 64)
		go o.receiveLoop(ctx, ch)
		envCh = ch
	}

	if o.injector != nil {
		go o.injector.Run(ctx)
	}

	uiTicker := time.NewTicker(time.Second / time.Duration(o.config.RefreshRate))
	defer uiTicker.Stop()

	o.terminal.Render(o.controller.BuildModel())

	for {
		select {
		case <-ctx.Done():
			return nil

		case env := <-envCh:
			if env != nil {
				o.observe(env)
			}

		case event := <-o.keyboard.Events():
			if o.controller.HandleKey(event) {
				util.LogInfo("Quit requested")
				return nil
			}
			o.terminal.Render(o.controller.BuildModel())

		case <-uiTicker.C:
			o.terminal.Render(o.controller.BuildModel())
		}
	}
}

func (o *Orchestrator) observe(env *envelope.Envelope) {
	if o.playClock != nil {
		o.playClock.Set(env.Timestamp)
	}
	key := stats.Key{
		SystemID:    env.SystemID,
		ComponentID: env.ComponentID,
		MessageID:   env.MessageID,
	}
	o.engine.Observe(key, env.MessageName, env.Timestamp)
	o.latest.Set(key, env.Fields)
	if o.recorder != nil {
		o.recorder.Record(env)
	}
}

// receiveLoop pulls from the transport until the stream ends or the
// link dies. Decode failures are counted and skipped; everything else
// fatal to the stream turns into a header note so the dashboard stays
// up with whatever was already collected.
func (o *Orchestrator) receiveLoop(ctx context.Context, out chan<- *envelope.Envelope) {
	for ctx.Err() == nil {
		env, err := o.transport.Receive(receiveTimeout)
		if err != nil {
			var decodeErr *codec.DecodeError
			switch {
			case errors.Is(err, transport.ErrTimeout):
				continue
			case errors.As(err, &decodeErr):
				o.engine.CountDrop()
				util.LogDebugf("Dropped undecodable frame: %v", decodeErr)
				continue
			case errors.Is(err, transport.ErrEndOfStream):
				util.LogInfo("End of stream")
				o.controller.SetLinkNote("end of stream")
				return
			case errors.Is(err, transport.ErrClosed):
				return
			default:
				util.LogErrorf("Receive failed: %v", err)
				o.controller.SetLinkNote("link lost")
				return
			}
		}

		select {
		case out <- env:
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the transport and recording.
func (o *Orchestrator) Close() {
	if o.recorder != nil {
		if err := o.recorder.Close(); err != nil {
			util.LogErrorf("Closing recording: %v", err)
		} else {
			util.LogInfof("Recorded %d messages to %s", o.recorder.Count(), o.recorder.Path())
		}
	}
	if o.transport != nil {
		if err := o.transport.Close(); err != nil {
			util.LogErrorf("Closing transport: %v", err)
		}
	}
}
