package display

import "time"

// Row is one line of the message table.
type Row struct {
	Sender   string
	Name     string
	Count    uint64
	Rate     float64
	Age      time.Duration
	Selected bool
}

// RecordingStatus describes the journal being written.
type RecordingStatus struct {
	Path   string
	Filter string
	Count  uint64
	Failed bool
}

// ReplayStatus describes playback position and speed.
type ReplayStatus struct {
	Cursor  int
	Total   int
	Playing bool
	Speed   float64
	Seeking bool
}

// HeartbeatStatus describes the heartbeat injector.
type HeartbeatStatus struct {
	Sent     uint64
	Failures uint64
}

// Model is everything the renderer needs for one frame. The
// controller builds a fresh Model per tick; the renderer holds no
// domain state of its own.
type Model struct {
	Source   string
	LinkNote string

	Rows          []Row
	FilterText    string
	FilterEditing bool
	SortLabel     string
	Drops         uint64

	DetailTitle   string
	Detail        []string
	DetailScroll  int
	DetailFocused bool

	Recording *RecordingStatus
	Heartbeat *HeartbeatStatus
	Replay    *ReplayStatus

	ShowHelp bool
}
