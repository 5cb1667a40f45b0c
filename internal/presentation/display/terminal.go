package display

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sanderkohnstamm/mavshark/internal/util"
)

const (
	minWidth  = 40
	minHeight = 8

	fallbackWidth  = 80
	fallbackHeight = 24
)

// Terminal renders Models into the alternate screen buffer. Frames
// are redrawn line by line against the previous frame so an unchanged
// dashboard costs nothing and the screen never flickers.
type Terminal struct {
	inAlternateScreen bool
	previousScreen    []string
	isFirstRender     bool
	size              func() (width, height int)
}

func NewTerminal() *Terminal {
	return &Terminal{
		isFirstRender: true,
		size:          terminalSize,
	}
}

func terminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return fallbackWidth, fallbackHeight
	}
	return width, height
}

// EnterAlternateScreen switches to alternate screen buffer
func (t *Terminal) EnterAlternateScreen() {
	if !t.inAlternateScreen {
		fmt.Print(util.EnterAltScreen)
		fmt.Print(util.ClearScreen)
		fmt.Print(util.MoveCursorHome)
		fmt.Print(util.HideCursor)
		t.inAlternateScreen = true
		t.isFirstRender = true
	}
}

// ExitAlternateScreen returns to normal screen buffer
func (t *Terminal) ExitAlternateScreen() {
	if t.inAlternateScreen {
		fmt.Print(util.ClearScreen)
		fmt.Print(util.MoveCursorHome)
		fmt.Print(util.ShowCursor)
		fmt.Print(util.ExitAltScreen)
		t.inAlternateScreen = false
	}
}

// Render draws one frame.
func (t *Terminal) Render(model *Model) {
	width, height := t.size()
	if width < minWidth {
		width = minWidth
	}
	if height < minHeight {
		height = minHeight
	}

	lines := BuildLines(model, width, height)

	if t.isFirstRender || len(t.previousScreen) != len(lines) {
		fmt.Print(util.ClearScreen)
		fmt.Print(util.MoveCursorHome)
		t.previousScreen = make([]string, len(lines))
		t.isFirstRender = false
		for i, line := range lines {
			fmt.Print(util.MoveCursor(i+1, 1))
			fmt.Print(line)
			t.previousScreen[i] = line
		}
		return
	}

	for i, line := range lines {
		if line == t.previousScreen[i] {
			continue
		}
		fmt.Print(util.MoveCursor(i+1, 1))
		fmt.Print(line)
		fmt.Print(util.ClearLineFromCursor)
		t.previousScreen[i] = line
	}
}

// BuildLines lays out one frame as exactly height lines of width
// columns. Split out from Render so layout is testable without a
// terminal.
func BuildLines(model *Model, width, height int) []string {
	if model.ShowHelp {
		return buildHelpLines(model, width, height)
	}

	lines := make([]string, 0, height)
	lines = append(lines, buildHeader(model, width))
	lines = append(lines, buildStatusLine(model, width))
	lines = append(lines, util.FormatSectionSeparator(width))

	bodyHeight := height - 4
	lines = append(lines, buildBody(model, width, bodyHeight)...)

	lines = append(lines, buildFooter(model, width))
	return lines
}

func buildHeader(model *Model, width int) string {
	title := util.FormatHeaderTitle("mavshark")
	text := fmt.Sprintf("%s  %s", title, model.Source)
	used := util.GetDisplayWidth("mavshark  " + model.Source)
	if model.LinkNote != "" {
		note := fmt.Sprintf("%s%s%s", util.ColorRed, model.LinkNote, util.ColorReset)
		pad := width - used - util.GetDisplayWidth(model.LinkNote)
		if pad < 1 {
			pad = 1
		}
		return text + strings.Repeat(" ", pad) + note
	}
	return text
}

func buildStatusLine(model *Model, width int) string {
	parts := []string{fmt.Sprintf("sort: %s", model.SortLabel)}

	if model.FilterEditing {
		parts = append(parts, fmt.Sprintf("filter: %s%s_%s", util.ColorYellow, model.FilterText, util.ColorReset))
	} else if model.FilterText != "" {
		parts = append(parts, fmt.Sprintf("filter: %s", model.FilterText))
	}

	if model.Drops > 0 {
		parts = append(parts, fmt.Sprintf("%sdrops: %d%s", util.ColorYellow, model.Drops, util.ColorReset))
	}

	if rec := model.Recording; rec != nil {
		if rec.Failed {
			parts = append(parts, fmt.Sprintf("%srec FAILED%s", util.ColorRed, util.ColorReset))
		} else {
			parts = append(parts, fmt.Sprintf("%srec%s %s (%s) %s",
				util.ColorRed, util.ColorReset, rec.Path, rec.Filter, util.FormatCount(rec.Count)))
		}
	}

	if hb := model.Heartbeat; hb != nil {
		s := fmt.Sprintf("hb: %d", hb.Sent)
		if hb.Failures > 0 {
			s += fmt.Sprintf(" (%d failed)", hb.Failures)
		}
		parts = append(parts, s)
	}

	if rp := model.Replay; rp != nil {
		state := "paused"
		if rp.Playing {
			state = "playing"
		}
		if rp.Seeking {
			state = "seek"
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d %s",
			state, rp.Cursor, rp.Total, util.FormatSpeed(rp.Speed)))
	}

	return strings.Join(parts, "  |  ")
}

func buildBody(model *Model, width, height int) []string {
	if height < 1 {
		return nil
	}

	listWidth := width
	var detail []string
	if model.DetailTitle != "" {
		listWidth = width * 45 / 100
		detail = buildDetailPane(model, width-listWidth-3, height)
	}

	list := buildMessageList(model, listWidth, height)

	lines := make([]string, height)
	for i := 0; i < height; i++ {
		left := ""
		if i < len(list) {
			left = list[i]
		}
		if detail == nil {
			lines[i] = left
			continue
		}
		right := ""
		if i < len(detail) {
			right = detail[i]
		}
		lines[i] = util.PadRight(left, listWidth) + " │ " + right
	}
	return lines
}

func buildMessageList(model *Model, width, height int) []string {
	lines := make([]string, 0, height)

	senderW := 8
	rateW := 9
	countW := 7
	ageW := 6
	nameW := width - senderW - rateW - countW - ageW - 4
	if nameW < 8 {
		nameW = 8
	}

	header := util.PadRight("SENDER", senderW) + " " +
		util.PadRight("MESSAGE", nameW) + " " +
		util.PadRight("RATE", rateW) + " " +
		util.PadRight("COUNT", countW) + " " +
		util.PadRight("AGE", ageW)
	lines = append(lines, util.FormatSectionTitle(header))

	visible := height - 1
	rows := model.Rows
	// Keep the selected row on screen.
	start := 0
	for i, row := range rows {
		if row.Selected && i >= visible {
			start = i - visible + 1
			break
		}
	}
	if start > len(rows) {
		start = len(rows)
	}
	end := start + visible
	if end > len(rows) {
		end = len(rows)
	}

	for _, row := range rows[start:end] {
		line := util.PadRight(row.Sender, senderW) + " " +
			util.PadRight(row.Name, nameW) + " " +
			util.PadRight(util.FormatRate(row.Rate), rateW) + " " +
			util.PadRight(util.FormatCount(row.Count), countW) + " " +
			util.PadRight(util.FormatAge(row.Age), ageW)
		if row.Selected {
			line = util.ColorInverse + line + util.ColorReset
		}
		lines = append(lines, line)
	}
	return lines
}

func buildDetailPane(model *Model, width, height int) []string {
	if width < 10 || height < 2 {
		return nil
	}
	lines := make([]string, 0, height)

	title := model.DetailTitle
	if model.DetailFocused {
		title = util.ColorInverse + title + util.ColorReset
	} else {
		title = util.FormatSectionTitle(title)
	}
	lines = append(lines, title)

	visible := height - 1
	start := model.DetailScroll
	if start > len(model.Detail) {
		start = len(model.Detail)
	}
	end := start + visible
	if end > len(model.Detail) {
		end = len(model.Detail)
	}
	for _, line := range model.Detail[start:end] {
		lines = append(lines, util.Truncate(line, width))
	}
	return lines
}

func buildFooter(model *Model, width int) string {
	var hints string
	switch {
	case model.FilterEditing:
		hints = "Enter confirm  Esc clear  Backspace delete"
	case model.Replay != nil && model.Replay.Seeking:
		hints = ", step back  . step fwd  g first  G last  c back  q quit"
	case model.Replay != nil:
		hints = "Space play/pause  +/- speed  c cursor  / filter  s sort  h help  q quit"
	default:
		hints = "/ filter  s sort  j/k select  Enter detail  h help  q quit"
	}
	return util.ColorDim + util.Truncate(hints, width) + util.ColorReset
}

func buildHelpLines(model *Model, width, height int) []string {
	lines := []string{
		util.FormatHeaderTitle("mavshark - Help"),
		strings.Repeat("═", min(width, 60)),
		"",
		"  q / Ctrl+C   Quit",
		"  h            Toggle this help",
		"  j/k, ↑/↓     Select message",
		"  Enter        Focus detail pane (Esc to leave)",
		"  PgUp/PgDn    Scroll detail (u/d while focused)",
		"  /            Edit filter (name substring or sys:comp)",
		"  s            Cycle sort: name → rate → count",
	}
	if model.Replay != nil {
		lines = append(lines,
			"",
			"  Space        Play / pause",
			"  + / -        Double / halve speed",
			"  c            Cursor mode: , . step, g/G first/last",
		)
	}
	lines = append(lines,
		"",
		strings.Repeat("═", min(width, 60)),
		"Press 'h' to return...",
	)
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines[:height]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
