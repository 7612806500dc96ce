package timecalc

import (
	"fmt"
	"strings"
	"time"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// WeekOf returns the 7-day window containing t that begins at local midnight
// of the most recent weekStart day.
func WeekOf(t time.Time, weekStart time.Weekday) Window {
	diff := (7 + int(t.Weekday()) - int(weekStart)) % 7
	start := StartOfDay(t.AddDate(0, 0, -diff))
	return Window{Start: start, End: start.AddDate(0, 0, 7)}
}

// Shift moves the window by n weeks; negative n moves it back.
func (w Window) Shift(n int) Window {
	return Window{Start: w.Start.AddDate(0, 0, 7*n), End: w.End.AddDate(0, 0, 7*n)}
}

// LastDay returns midnight of the last day inside the window.
func (w Window) LastDay() time.Time {
	return StartOfDay(w.End.AddDate(0, 0, -1))
}

// Label renders the window like "2026-02-23 (Mon) - 2026-03-01 (Sun)".
func (w Window) Label() string {
	last := w.LastDay()
	return fmt.Sprintf("%s (%s) - %s (%s)",
		w.Start.Format("2006-01-02"), w.Start.Format("Mon"),
		last.Format("2006-01-02"), last.Format("Mon"))
}

// ParseWeekday parses "monday" or "sunday" (case-insensitive).
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday", "mon":
		return time.Monday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	default:
		return time.Monday, fmt.Errorf("unsupported week start %q (want monday or sunday)", s)
	}
}

// ParseDate parses a YYYY-MM-DD date as local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS. Hours are zero-padded to
// two digits and grow beyond that when needed; negative input renders as zero.
func FormatDurationHHMMSS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
