package app

import "fmt"

// DefaultRefreshRate is the UI redraw frequency in Hz.
const DefaultRefreshRate = 10

// Config carries everything the commands layer collects.
type Config struct {
	// ConnectionSpec is the transport to inspect, e.g.
	// "udpin:0.0.0.0:14550". Ignored in replay mode.
	ConnectionSpec string

	// Follow keeps a file transport open at EOF, delivering frames as
	// they are appended.
	Follow bool

	// RecordPath enables journaling of received messages.
	RecordPath string
	// RecordFilter restricts the journal to the named message types.
	RecordFilter string

	// HeartbeatSystemID enables the heartbeat injector when >= 0.
	HeartbeatSystemID int
	// HeartbeatComponentID is the component id to announce as.
	HeartbeatComponentID int

	// RefreshRate is the UI redraw frequency in Hz.
	RefreshRate int

	// ReplayPath is the journal to play back in replay mode.
	ReplayPath string
}

// Validate checks ranges that cobra flag types cannot express.
func (c *Config) Validate() error {
	if c.HeartbeatSystemID > 255 {
		return fmt.Errorf("heartbeat system id %d out of range", c.HeartbeatSystemID)
	}
	if c.HeartbeatComponentID < 0 || c.HeartbeatComponentID > 255 {
		return fmt.Errorf("heartbeat component id %d out of range", c.HeartbeatComponentID)
	}
	if c.RefreshRate < 0 || c.RefreshRate > 60 {
		return fmt.Errorf("refresh rate %d out of range", c.RefreshRate)
	}
	if c.RefreshRate == 0 {
		c.RefreshRate = DefaultRefreshRate
	}
	return nil
}
