package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanderkohnstamm/mavshark/internal/core/envelope"
	"github.com/sanderkohnstamm/mavshark/internal/presentation/interaction"
	"github.com/sanderkohnstamm/mavshark/internal/stats"
)

func testController() *Controller {
	engine := stats.NewEngine()
	latest := NewLatestStore()
	now := time.Now()

	for _, m := range []struct {
		key  stats.Key
		name string
	}{
		{stats.Key{SystemID: 1, ComponentID: 1, MessageID: 0}, "HEARTBEAT"},
		{stats.Key{SystemID: 1, ComponentID: 1, MessageID: 30}, "ATTITUDE"},
		{stats.Key{SystemID: 2, ComponentID: 190, MessageID: 0}, "HEARTBEAT"},
	} {
		engine.Observe(m.key, m.name, now)
		latest.Set(m.key, []envelope.Field{{Name: "f", Value: uint64(1)}})
	}

	c := NewController(engine, latest, "udpin:0.0.0.0:14550")
	c.clock = func() time.Time { return now }
	return c
}

func char(r rune) interaction.KeyEvent {
	return interaction.KeyEvent{Key: r, Type: interaction.KeyChar}
}

func key(t interaction.KeyType) interaction.KeyEvent {
	return interaction.KeyEvent{Type: t}
}

func TestQuitKeys(t *testing.T) {
	assert.True(t, testController().HandleKey(char('q')))
	assert.True(t, testController().HandleKey(char(3)))
	assert.False(t, testController().HandleKey(char('x')))
}

func TestSortCycling(t *testing.T) {
	c := testController()
	assert.Equal(t, "name", c.BuildModel().SortLabel)

	c.HandleKey(char('s'))
	assert.Equal(t, "rate", c.BuildModel().SortLabel)
	c.HandleKey(char('s'))
	assert.Equal(t, "count", c.BuildModel().SortLabel)
	c.HandleKey(char('s'))
	assert.Equal(t, "name", c.BuildModel().SortLabel)
}

func TestFilterEditing(t *testing.T) {
	c := testController()

	c.HandleKey(char('/'))
	model := c.BuildModel()
	assert.True(t, model.FilterEditing)

	for _, r := range "heart" {
		c.HandleKey(char(r))
	}
	model = c.BuildModel()
	assert.Equal(t, "heart", model.FilterText)
	require.Len(t, model.Rows, 2)
	for _, row := range model.Rows {
		assert.Equal(t, "HEARTBEAT", row.Name)
	}

	c.HandleKey(key(interaction.KeyBackspace))
	assert.Equal(t, "hear", c.BuildModel().FilterText)

	c.HandleKey(key(interaction.KeyEnter))
	model = c.BuildModel()
	assert.False(t, model.FilterEditing)
	assert.Equal(t, "hear", model.FilterText)

	// Esc from browsing clears the confirmed filter.
	c.HandleKey(key(interaction.KeyEscape))
	model = c.BuildModel()
	assert.Empty(t, model.FilterText)
	assert.Len(t, model.Rows, 3)
}

func TestFilterEscapeClearsWhileEditing(t *testing.T) {
	c := testController()
	c.HandleKey(char('/'))
	c.HandleKey(char('x'))
	c.HandleKey(key(interaction.KeyEscape))

	model := c.BuildModel()
	assert.False(t, model.FilterEditing)
	assert.Empty(t, model.FilterText)
}

func TestIdentityFilter(t *testing.T) {
	c := testController()
	c.HandleKey(char('/'))
	for _, r := range "2:190" {
		c.HandleKey(char(r))
	}

	model := c.BuildModel()
	require.Len(t, model.Rows, 1)
	assert.Equal(t, "2:190", model.Rows[0].Sender)
}

func TestIdentityFilterHalfOpen(t *testing.T) {
	c := testController()
	c.HandleKey(char('/'))
	for _, r := range "1:" {
		c.HandleKey(char(r))
	}

	model := c.BuildModel()
	assert.Len(t, model.Rows, 2)
}

func TestSelectionAndDetail(t *testing.T) {
	c := testController()
	c.BuildModel()

	c.HandleKey(char('j'))
	model := c.BuildModel()
	require.Len(t, model.Rows, 3)
	assert.True(t, model.Rows[0].Selected)

	c.HandleKey(char('j'))
	c.HandleKey(char('j'))
	c.HandleKey(char('j')) // clamped at last row
	model = c.BuildModel()
	assert.True(t, model.Rows[2].Selected)
	assert.NotEmpty(t, model.DetailTitle)

	c.HandleKey(char('k'))
	model = c.BuildModel()
	assert.True(t, model.Rows[1].Selected)

	c.HandleKey(key(interaction.KeyEnter))
	model = c.BuildModel()
	assert.True(t, model.DetailFocused)

	c.HandleKey(char('d'))
	assert.Equal(t, 5, c.BuildModel().DetailScroll)
	c.HandleKey(char('u'))
	assert.Equal(t, 0, c.BuildModel().DetailScroll)

	c.HandleKey(key(interaction.KeyEscape))
	assert.False(t, c.BuildModel().DetailFocused)
}

func TestSelectionSurvivesResort(t *testing.T) {
	c := testController()
	c.BuildModel()
	c.HandleKey(char('j'))
	selectedBefore := c.selected

	c.HandleKey(char('s'))
	c.BuildModel()
	assert.Equal(t, selectedBefore, c.selected)
	assert.True(t, c.haveSelection)
}

func TestHelpToggle(t *testing.T) {
	c := testController()
	c.HandleKey(char('h'))
	assert.True(t, c.BuildModel().ShowHelp)

	// Any key returns from help.
	c.HandleKey(char('h'))
	assert.False(t, c.BuildModel().ShowHelp)

	c.HandleKey(char('h'))
	assert.True(t, c.HandleKey(char('q')))
}

func TestSeekingModeExitKeys(t *testing.T) {
	for _, exit := range []interaction.KeyEvent{
		key(interaction.KeyEnter),
		key(interaction.KeyEscape),
		char('c'),
	} {
		c := testController()
		c.mode = ModeSeeking
		assert.False(t, c.HandleKey(exit))
		assert.Equal(t, ModeBrowsing, c.mode)
	}
}

func TestLinkNote(t *testing.T) {
	c := testController()
	c.SetLinkNote("link lost")
	assert.Equal(t, "link lost", c.BuildModel().LinkNote)
}

func TestMatchFilter(t *testing.T) {
	entry := stats.Entry{
		Key:  stats.Key{SystemID: 1, ComponentID: 42},
		Name: "GPS_RAW_INT",
	}

	assert.True(t, matchFilter("gps", entry))
	assert.True(t, matchFilter("RAW_INT", entry))
	assert.False(t, matchFilter("attitude", entry))
	assert.True(t, matchFilter("1:42", entry))
	assert.True(t, matchFilter("1:", entry))
	assert.True(t, matchFilter(":42", entry))
	assert.False(t, matchFilter("2:42", entry))
	assert.False(t, matchFilter("1:43", entry))
	// Non-numeric halves fall back to name matching.
	assert.False(t, matchFilter("sys:comp", entry))
}
