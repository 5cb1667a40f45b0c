// Package heartbeat periodically announces a ground-station presence
// on the link so autopilots keep streaming telemetry.
package heartbeat

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/sanderkohnstamm/mavshark/internal/util"
)

const interval = time.Second

// GCSMessage is the announcement a ground station sends: not a
// vehicle, no autopilot, active.
func GCSMessage() message.Message {
	return &common.MessageHeartbeat{
		Type:           common.MAV_TYPE_GCS,
		Autopilot:      common.MAV_AUTOPILOT_INVALID,
		SystemStatus:   common.MAV_STATE_ACTIVE,
		MavlinkVersion: 3,
	}
}

// Sender is the outbound half of a link.
type Sender interface {
	SendMessage(msg message.Message) error
}

// Injector sends one heartbeat per second until its context is
// cancelled. Send failures are counted and logged but never stop the
// injector: a flaky link should not silence the announcements that
// might revive it.
type Injector struct {
	sender   Sender
	msg      message.Message
	sent     atomic.Uint64
	failures atomic.Uint64
}

func NewInjector(sender Sender, msg message.Message) *Injector {
	return &Injector{sender: sender, msg: msg}
}

// Run blocks until ctx is cancelled. The first heartbeat goes out
// immediately rather than one interval in.
func (i *Injector) Run(ctx context.Context) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i.send()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.send()
		}
	}
}

func (i *Injector) send() {
	if err := i.sender.SendMessage(i.msg); err != nil {
		i.failures.Add(1)
		util.LogDebugf("Heartbeat send failed: %v", err)
		return
	}
	i.sent.Add(1)
}

// Sent reports heartbeats delivered to the link.
func (i *Injector) Sent() uint64 { return i.sent.Load() }

// Failures reports heartbeats the link refused.
func (i *Injector) Failures() uint64 { return i.failures.Load() }
