package app

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sanderkohnstamm/mavshark/internal/heartbeat"
	"github.com/sanderkohnstamm/mavshark/internal/presentation/display"
	"github.com/sanderkohnstamm/mavshark/internal/presentation/interaction"
	"github.com/sanderkohnstamm/mavshark/internal/recorder"
	"github.com/sanderkohnstamm/mavshark/internal/replay"
	"github.com/sanderkohnstamm/mavshark/internal/stats"
)

// Mode is the controller's interaction state.
type Mode int

const (
	// ModeBrowsing is the default table view.
	ModeBrowsing Mode = iota
	// ModeFiltering is active while the filter line is being edited.
	ModeFiltering
	// ModeDetail moves scrolling focus to the detail pane.
	ModeDetail
	// ModeSeeking is the replay cursor sub-mode.
	ModeSeeking
)

// Controller owns all interaction state and turns it plus the stats
// snapshot into a display.Model once per tick. Key handling and model
// building run on the orchestrator loop; SetLinkNote may be called
// from the receive goroutine.
type Controller struct {
	mu     sync.Mutex
	stats  *stats.Engine
	latest *LatestStore
	source string
	clock  func() time.Time

	recorder *recorder.Recorder
	injector *heartbeat.Injector
	player   *replay.Player

	mode          Mode
	showHelp      bool
	sort          stats.SortMode
	filterText    string
	selected      stats.Key
	haveSelection bool
	detailScroll  int
	linkNote      string

	// Visible ordering from the last BuildModel, used to move the
	// selection relative to what is on screen.
	lastKeys []stats.Key
}

func NewController(engine *stats.Engine, latest *LatestStore, source string) *Controller {
	return &Controller{
		stats:  engine,
		latest: latest,
		source: source,
		clock:  time.Now,
	}
}

func (c *Controller) AttachRecorder(rec *recorder.Recorder)  { c.recorder = rec }
func (c *Controller) AttachInjector(inj *heartbeat.Injector) { c.injector = inj }
func (c *Controller) AttachPlayer(player *replay.Player)     { c.player = player }

// SetLinkNote publishes a link status message onto the header line.
func (c *Controller) SetLinkNote(note string) {
	c.mu.Lock()
	c.linkNote = note
	c.mu.Unlock()
}

// HandleKey processes one key event. It reports whether the user
// asked to quit.
func (c *Controller) HandleKey(event interaction.KeyEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Ctrl+C quits from every mode.
	if event.Type == interaction.KeyChar && event.Key == 3 {
		return true
	}

	if c.showHelp {
		switch {
		case event.Type == interaction.KeyChar && (event.Key == 'q' || event.Key == 'Q'):
			return true
		default:
			c.showHelp = false
		}
		return false
	}

	switch c.mode {
	case ModeFiltering:
		c.handleFilteringKey(event)
	case ModeDetail:
		return c.handleDetailKey(event)
	case ModeSeeking:
		return c.handleSeekingKey(event)
	default:
		return c.handleBrowsingKey(event)
	}
	return false
}

func (c *Controller) handleBrowsingKey(event interaction.KeyEvent) bool {
	switch event.Type {
	case interaction.KeyUp:
		c.moveSelection(-1)
	case interaction.KeyDown:
		c.moveSelection(1)
	case interaction.KeyEnter:
		if c.haveSelection {
			c.mode = ModeDetail
		}
	case interaction.KeyPageUp:
		c.scrollDetail(-5)
	case interaction.KeyPageDown:
		c.scrollDetail(5)
	case interaction.KeyEscape:
		c.filterText = ""
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q':
			return true
		case 'h', 'H':
			c.showHelp = true
		case '/':
			c.mode = ModeFiltering
		case 's', 'S':
			c.sort = c.sort.Next()
		case 'j':
			c.moveSelection(1)
		case 'k':
			c.moveSelection(-1)
		case ' ':
			if c.player != nil {
				c.player.TogglePlay()
			}
		case '+', '=':
			if c.player != nil {
				c.player.SpeedUp()
			}
		case '-':
			if c.player != nil {
				c.player.SlowDown()
			}
		case 'c', 'C':
			if c.player != nil {
				c.player.Pause()
				c.mode = ModeSeeking
			}
		}
	}
	return false
}

func (c *Controller) handleFilteringKey(event interaction.KeyEvent) {
	switch event.Type {
	case interaction.KeyEnter:
		c.mode = ModeBrowsing
	case interaction.KeyEscape:
		c.filterText = ""
		c.mode = ModeBrowsing
	case interaction.KeyBackspace:
		if len(c.filterText) > 0 {
			c.filterText = c.filterText[:len(c.filterText)-1]
		}
	case interaction.KeyChar:
		if event.Key >= ' ' && event.Key != 127 {
			c.filterText += string(event.Key)
		}
	}
}

func (c *Controller) handleDetailKey(event interaction.KeyEvent) bool {
	switch event.Type {
	case interaction.KeyEscape, interaction.KeyEnter:
		c.mode = ModeBrowsing
	case interaction.KeyUp, interaction.KeyPageUp:
		c.scrollDetail(-5)
	case interaction.KeyDown, interaction.KeyPageDown:
		c.scrollDetail(5)
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q':
			return true
		case 'u', 'k':
			c.scrollDetail(-5)
		case 'd', 'j':
			c.scrollDetail(5)
		}
	}
	return false
}

func (c *Controller) handleSeekingKey(event interaction.KeyEvent) bool {
	switch event.Type {
	case interaction.KeyEscape, interaction.KeyEnter:
		c.mode = ModeBrowsing
	case interaction.KeyLeft:
		c.player.StepBack()
	case interaction.KeyRight:
		c.player.StepForward()
	case interaction.KeyChar:
		switch event.Key {
		case 'q', 'Q':
			return true
		case 'c', 'C':
			c.mode = ModeBrowsing
		case ',':
			c.player.StepBack()
		case '.':
			c.player.StepForward()
		case 'g':
			c.player.SeekFirst()
		case 'G':
			c.player.SeekLast()
		}
	}
	return false
}

func (c *Controller) moveSelection(delta int) {
	if len(c.lastKeys) == 0 {
		c.haveSelection = false
		return
	}
	idx := 0
	if c.haveSelection {
		for i, key := range c.lastKeys {
			if key == c.selected {
				idx = i + delta
				break
			}
		}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.lastKeys) {
		idx = len(c.lastKeys) - 1
	}
	if c.selected != c.lastKeys[idx] {
		c.detailScroll = 0
	}
	c.selected = c.lastKeys[idx]
	c.haveSelection = true
}

func (c *Controller) scrollDetail(delta int) {
	c.detailScroll += delta
	if c.detailScroll < 0 {
		c.detailScroll = 0
	}
}

// BuildModel assembles one frame from the current stats snapshot and
// interaction state.
func (c *Controller) BuildModel() *display.Model {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	entries := c.visibleEntries()

	c.lastKeys = c.lastKeys[:0]
	for _, e := range entries {
		c.lastKeys = append(c.lastKeys, e.Key)
	}
	c.clampSelection()

	model := &display.Model{
		Source:        c.source,
		LinkNote:      c.linkNote,
		FilterText:    c.filterText,
		FilterEditing: c.mode == ModeFiltering,
		SortLabel:     c.sort.String(),
		Drops:         c.stats.Drops(),
		DetailScroll:  c.detailScroll,
		DetailFocused: c.mode == ModeDetail,
		ShowHelp:      c.showHelp,
	}

	for _, e := range entries {
		model.Rows = append(model.Rows, display.Row{
			Sender:   fmt.Sprintf("%d:%d", e.Key.SystemID, e.Key.ComponentID),
			Name:     e.Name,
			Count:    e.Count,
			Rate:     e.Rate,
			Age:      now.Sub(e.LastSeen),
			Selected: c.haveSelection && e.Key == c.selected,
		})
	}

	if c.haveSelection {
		if fields, ok := c.latest.Get(c.selected); ok {
			name := ""
			for _, e := range entries {
				if e.Key == c.selected {
					name = e.Name
					break
				}
			}
			model.DetailTitle = fmt.Sprintf("%s %d:%d", name, c.selected.SystemID, c.selected.ComponentID)
			for _, f := range fields {
				model.Detail = append(model.Detail, fmt.Sprintf("%s: %v", f.Name, f.Value))
			}
		}
	}

	if c.recorder != nil {
		model.Recording = &display.RecordingStatus{
			Path:   c.recorder.Path(),
			Filter: c.recorder.Filter().Describe(),
			Count:  c.recorder.Count(),
			Failed: c.recorder.Err() != nil,
		}
	}

	if c.injector != nil {
		model.Heartbeat = &display.HeartbeatStatus{
			Sent:     c.injector.Sent(),
			Failures: c.injector.Failures(),
		}
	}

	if c.player != nil {
		session := c.player.Session()
		model.Replay = &display.ReplayStatus{
			Cursor:  session.Cursor(),
			Total:   session.Len(),
			Playing: session.Playing(),
			Speed:   session.Speed(),
			Seeking: c.mode == ModeSeeking,
		}
	}

	return model
}

func (c *Controller) visibleEntries() []stats.Entry {
	snapshot := c.stats.Snapshot(c.sort)
	if c.filterText == "" {
		return snapshot
	}
	filtered := snapshot[:0]
	for _, e := range snapshot {
		if matchFilter(c.filterText, e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (c *Controller) clampSelection() {
	if len(c.lastKeys) == 0 {
		c.haveSelection = false
		return
	}
	if !c.haveSelection {
		return
	}
	for _, key := range c.lastKeys {
		if key == c.selected {
			return
		}
	}
	c.selected = c.lastKeys[0]
	c.detailScroll = 0
}

// matchFilter interprets input with a colon between numeric or empty
// halves as a sys:comp pattern; anything else is a case-insensitive
// name substring.
func matchFilter(filter string, entry stats.Entry) bool {
	if sys, comp, ok := parseIdentityFilter(filter); ok {
		if sys >= 0 && uint8(sys) != entry.Key.SystemID {
			return false
		}
		if comp >= 0 && uint8(comp) != entry.Key.ComponentID {
			return false
		}
		return true
	}
	return strings.Contains(strings.ToLower(entry.Name), strings.ToLower(filter))
}

func parseIdentityFilter(filter string) (sys, comp int, ok bool) {
	left, right, found := strings.Cut(filter, ":")
	if !found {
		return 0, 0, false
	}
	sys, comp = -1, -1
	if left != "" {
		n, err := strconv.ParseUint(left, 10, 8)
		if err != nil {
			return 0, 0, false
		}
		sys = int(n)
	}
	if right != "" {
		n, err := strconv.ParseUint(right, 10, 8)
		if err != nil {
			return 0, 0, false
		}
		comp = int(n)
	}
	return sys, comp, true
}
