package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "9999", FormatCount(9999))
	assert.Equal(t, "12.5K", FormatCount(12500))
	assert.Equal(t, "2.0M", FormatCount(2000000))
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "-", FormatRate(0))
	assert.Equal(t, "0.25 Hz", FormatRate(0.25))
	assert.Equal(t, "4.0 Hz", FormatRate(4.0))
	assert.Equal(t, "50.1 Hz", FormatRate(50.06))
	assert.Equal(t, "400 Hz", FormatRate(400.2))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "now", FormatAge(200*time.Millisecond))
	assert.Equal(t, "5s", FormatAge(5*time.Second))
	assert.Equal(t, "2m05s", FormatAge(125*time.Second))
	assert.Equal(t, "1h01m", FormatAge(61*time.Minute))
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "x1", FormatSpeed(1.0))
	assert.Equal(t, "x8", FormatSpeed(8.0))
	assert.Equal(t, "x0.25", FormatSpeed(0.25))
	assert.Equal(t, "x0.50", FormatSpeed(0.5))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", PadRight("abc", 5))
	assert.Equal(t, "abcd…", PadRight("abcdefgh", 5))
	assert.Equal(t, "", PadRight("abc", 0))
}

func TestCenterText(t *testing.T) {
	assert.Equal(t, "  ab  ", CenterText("ab", 6))
	assert.Equal(t, "abcdef", CenterText("abcdefgh", 6))
}
