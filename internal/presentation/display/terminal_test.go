package display

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveModel() *Model {
	return &Model{
		Source:    "udpin:0.0.0.0:14550",
		SortLabel: "name",
		Rows: []Row{
			{Sender: "1:1", Name: "ATTITUDE", Count: 421, Rate: 10.2, Age: time.Second},
			{Sender: "1:1", Name: "HEARTBEAT", Count: 42, Rate: 1.0, Selected: true},
		},
	}
}

func TestBuildLinesShape(t *testing.T) {
	lines := BuildLines(liveModel(), 80, 24)
	assert.Len(t, lines, 24)
}

func TestBuildLinesShowsRows(t *testing.T) {
	joined := strings.Join(BuildLines(liveModel(), 80, 24), "\n")
	assert.Contains(t, joined, "udpin:0.0.0.0:14550")
	assert.Contains(t, joined, "HEARTBEAT")
	assert.Contains(t, joined, "ATTITUDE")
	assert.Contains(t, joined, "10.2 Hz")
	assert.Contains(t, joined, "sort: name")
}

func TestBuildLinesDetailPane(t *testing.T) {
	model := liveModel()
	model.DetailTitle = "HEARTBEAT 1:1"
	model.Detail = []string{"type: 2", "autopilot: 3", "base_mode: 81"}

	joined := strings.Join(BuildLines(model, 100, 24), "\n")
	assert.Contains(t, joined, "HEARTBEAT 1:1")
	assert.Contains(t, joined, "type: 2")
	assert.Contains(t, joined, "│")
}

func TestBuildLinesDetailScroll(t *testing.T) {
	model := liveModel()
	model.DetailTitle = "HEARTBEAT 1:1"
	model.Detail = []string{"line-a", "line-b", "line-c"}
	model.DetailScroll = 2

	joined := strings.Join(BuildLines(model, 100, 24), "\n")
	assert.NotContains(t, joined, "line-a")
	assert.Contains(t, joined, "line-c")
}

func TestBuildLinesReplayStatus(t *testing.T) {
	model := liveModel()
	model.Replay = &ReplayStatus{Cursor: 7, Total: 120, Playing: true, Speed: 2}

	joined := strings.Join(BuildLines(model, 80, 24), "\n")
	assert.Contains(t, joined, "playing 7/120 x2")
}

func TestBuildLinesRecordingStatus(t *testing.T) {
	model := liveModel()
	model.Recording = &RecordingStatus{Path: "out.jsonl", Filter: "all", Count: 9}

	joined := strings.Join(BuildLines(model, 80, 24), "\n")
	assert.Contains(t, joined, "out.jsonl")
}

func TestBuildLinesHelp(t *testing.T) {
	model := liveModel()
	model.ShowHelp = true

	lines := BuildLines(model, 80, 24)
	require.Len(t, lines, 24)
	assert.Contains(t, strings.Join(lines, "\n"), "Toggle this help")
}

func TestBuildLinesKeepsSelectionVisible(t *testing.T) {
	model := liveModel()
	model.Rows = nil
	for i := 0; i < 50; i++ {
		model.Rows = append(model.Rows, Row{Sender: "1:1", Name: "MSG"})
	}
	model.Rows[49].Selected = true
	model.Rows[49].Name = "LAST_ONE"

	joined := strings.Join(BuildLines(model, 80, 12), "\n")
	assert.Contains(t, joined, "LAST_ONE")
}
