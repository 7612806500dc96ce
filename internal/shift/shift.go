// Package shift turns clock events into clipped shift intervals.
//
// The functions are pure: they take the event sequence, the half-open window
// [weekStart, weekEnd) and the evaluation time, and read nothing else. They
// are department-agnostic; callers merge the departments they want first.
package shift

import (
	"sort"
	"time"

	"github.com/Tiliavir/rp-shift-tracker/internal/model"
)

// Compute pairs IN/OUT events into intervals clipped to [weekStart, weekEnd).
// events must be sorted by timestamp. A repeated IN replaces the pending one,
// an OUT without a pending IN is ignored, and a trailing open IN is closed at
// now. Only intervals with a positive length are returned.
func Compute(events []model.ShiftEvent, weekStart, weekEnd, now time.Time) []model.Shift {
	var shifts []model.Shift
	walk(events, weekStart, weekEnd, now, func(s model.Shift) {
		shifts = append(shifts, s)
	})
	return shifts
}

// TotalSeconds returns the summed duration of Compute without building the
// interval list.
func TotalSeconds(events []model.ShiftEvent, weekStart, weekEnd, now time.Time) int64 {
	var total int64
	walk(events, weekStart, weekEnd, now, func(s model.Shift) {
		total += s.DurationSeconds
	})
	return total
}

// Sum adds up the durations of shifts.
func Sum(shifts []model.Shift) int64 {
	var total int64
	for _, s := range shifts {
		total += s.DurationSeconds
	}
	return total
}

// Merge concatenates per-department event lists and re-sorts the result by
// timestamp. Events with equal timestamps keep their argument order.
func Merge(lists ...[]model.ShiftEvent) []model.ShiftEvent {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	merged := make([]model.ShiftEvent, 0, n)
	for _, l := range lists {
		merged = append(merged, l...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

func walk(events []model.ShiftEvent, weekStart, weekEnd, now time.Time, emit func(model.Shift)) {
	var openIn *time.Time
	for i := range events {
		ev := events[i]
		switch ev.Action {
		case model.ActionIn:
			ts := ev.Timestamp
			openIn = &ts
		case model.ActionOut:
			if openIn == nil {
				continue
			}
			if s, ok := clip(*openIn, ev.Timestamp, weekStart, weekEnd); ok {
				emit(s)
			}
			openIn = nil
		}
	}
	if openIn != nil {
		if s, ok := clip(*openIn, now, weekStart, weekEnd); ok {
			emit(s)
		}
	}
}

func clip(in, out, weekStart, weekEnd time.Time) (model.Shift, bool) {
	start := in
	if weekStart.After(start) {
		start = weekStart
	}
	end := out
	if weekEnd.Before(end) {
		end = weekEnd
	}
	if !end.After(start) {
		return model.Shift{}, false
	}
	return model.Shift{
		Start:           start,
		End:             end,
		DurationSeconds: int64(end.Sub(start) / time.Second),
	}, true
}
