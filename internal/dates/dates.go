// Package dates provides the due-date presets offered by quick-add
// forms: pure functions of the current time.
package dates

import "time"

// Preset is one selectable due-date shortcut.
type Preset struct {
	Label string
	Date  time.Time
}

// Presets returns the full preset list relative to now: today,
// tomorrow, the coming Saturday, the coming Monday and the first of
// next month. Dates are truncated to midnight in now's location.
func Presets(now time.Time) []Preset {
	today := midnight(now)
	return []Preset{
		{Label: "Today", Date: today},
		{Label: "Tomorrow", Date: today.AddDate(0, 0, 1)},
		{Label: "This weekend", Date: nextWeekday(today, time.Saturday)},
		{Label: "Next week", Date: nextWeekday(today, time.Monday)},
		{Label: "Next month", Date: time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, today.Location())},
	}
}

// SimplePresets returns the reduced list used by compact forms.
func SimplePresets(now time.Time) []Preset {
	today := midnight(now)
	return []Preset{
		{Label: "Today", Date: today},
		{Label: "Tomorrow", Date: today.AddDate(0, 0, 1)},
		{Label: "Next week", Date: today.AddDate(0, 0, 7)},
	}
}

// DayName returns the weekday name for display next to a preset.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextWeekday returns the next occurrence of day strictly after today.
func nextWeekday(today time.Time, day time.Weekday) time.Time {
	delta := (int(day) - int(today.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDate(0, 0, delta)
}
