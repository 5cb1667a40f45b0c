package util

import (
	"fmt"
	"time"
)

// Helper functions
func FormatCount(n uint64) string {
	if n < 10000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatRate renders a receive rate in Hz with precision matched to
// magnitude.
func FormatRate(hz float64) string {
	switch {
	case hz <= 0.005:
		return "-"
	case hz < 1:
		return fmt.Sprintf("%.2f Hz", hz)
	case hz < 100:
		return fmt.Sprintf("%.1f Hz", hz)
	default:
		return fmt.Sprintf("%.0f Hz", hz)
	}
}

// FormatAge renders how long ago a message was last seen.
func FormatAge(since time.Duration) string {
	switch {
	case since < time.Second:
		return "now"
	case since < time.Minute:
		return fmt.Sprintf("%ds", int(since.Seconds()))
	case since < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(since.Minutes()), int(since.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(since.Hours()), int(since.Minutes())%60)
	}
}

// FormatSpeed renders a playback speed multiplier, dropping the
// fraction for whole numbers.
func FormatSpeed(speed float64) string {
	if speed == float64(int(speed)) {
		return fmt.Sprintf("x%d", int(speed))
	}
	return fmt.Sprintf("x%.2f", speed)
}
