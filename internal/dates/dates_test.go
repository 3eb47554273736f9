package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPresetsFromMidWeek(t *testing.T) {
	// Wednesday afternoon.
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	presets := Presets(now)
	require.Len(t, presets, 5)

	assert.Equal(t, day(2025, 3, 12), presets[0].Date, "Today")
	assert.Equal(t, day(2025, 3, 13), presets[1].Date, "Tomorrow")
	assert.Equal(t, day(2025, 3, 15), presets[2].Date, "This weekend")
	assert.Equal(t, day(2025, 3, 17), presets[3].Date, "Next week")
	assert.Equal(t, day(2025, 4, 1), presets[4].Date, "Next month")

	for _, p := range presets {
		h, m, s := p.Date.Clock()
		assert.Zero(t, h+m+s, "%s is not at midnight", p.Label)
	}
}

func TestPresetsOnTheTargetWeekday(t *testing.T) {
	// On a Saturday "this weekend" means next Saturday, not today.
	saturday := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	presets := Presets(saturday)
	assert.Equal(t, day(2025, 3, 22), presets[2].Date)

	// Same for Monday and "next week".
	monday := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, day(2025, 3, 24), Presets(monday)[3].Date)
}

func TestPresetsDecemberRollsOver(t *testing.T) {
	now := time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC)
	presets := Presets(now)
	assert.Equal(t, day(2026, 1, 1), presets[4].Date, "Next month crosses the year boundary")
}

func TestSimplePresets(t *testing.T) {
	now := time.Date(2025, 3, 12, 23, 59, 0, 0, time.UTC)
	presets := SimplePresets(now)
	require.Len(t, presets, 3)
	assert.Equal(t, day(2025, 3, 12), presets[0].Date)
	assert.Equal(t, day(2025, 3, 13), presets[1].Date)
	assert.Equal(t, day(2025, 3, 19), presets[2].Date)
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Saturday", DayName(day(2025, 3, 15)))
}
