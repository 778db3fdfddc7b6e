// Package schedule holds the pure planning domain: time windows, availability
// gaps, schedulable items, and per-job scheduling state. Nothing in this
// package performs I/O.
package schedule

import (
	"sort"
	"time"
)

// TimeWindow is a closed-open interval [Start, End) of UTC instants.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// IsValid reports whether the window has positive length.
func (w TimeWindow) IsValid() bool {
	return w.Start.Before(w.End)
}

// Contains reports whether t falls inside [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether two windows share any instant.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Subtract removes the blocked interval from the window, returning the zero,
// one, or two non-empty pieces that remain.
func (w TimeWindow) Subtract(block TimeWindow) []TimeWindow {
	if !w.Overlaps(block) || !block.IsValid() {
		if w.IsValid() {
			return []TimeWindow{w}
		}
		return nil
	}

	var out []TimeWindow
	if block.Start.After(w.Start) {
		left := TimeWindow{Start: w.Start, End: block.Start}
		if left.IsValid() {
			out = append(out, left)
		}
	}
	if block.End.Before(w.End) {
		right := TimeWindow{Start: block.End, End: w.End}
		if right.IsValid() {
			out = append(out, right)
		}
	}
	return out
}

// SubtractFromWindows removes a blocked interval from every window in the
// list, keeping the result sorted and free of zero-length pieces.
func SubtractFromWindows(windows []TimeWindow, block TimeWindow) []TimeWindow {
	out := make([]TimeWindow, 0, len(windows)+1)
	for _, w := range windows {
		out = append(out, w.Subtract(block)...)
	}
	SortWindows(out)
	return out
}

// SortWindows sorts windows by start time in place.
func SortWindows(windows []TimeWindow) {
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
}

// Envelope returns the shift envelope [first start, last end] of a sorted,
// non-empty window list.
func Envelope(windows []TimeWindow) (TimeWindow, bool) {
	if len(windows) == 0 {
		return TimeWindow{}, false
	}
	return TimeWindow{Start: windows[0].Start, End: windows[len(windows)-1].End}, true
}

// DailyAvailability maps a YYYY-MM-DD date key to the technician's ordered,
// non-overlapping working windows for that day. Empty days carry no entry.
type DailyAvailability map[string][]TimeWindow

// Gap is an unavailable sub-interval within a technician's shift envelope.
type Gap struct {
	TechnicianID    int64     `json:"technician_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// NewGap builds a gap from its bounds, computing the duration.
func NewGap(techID int64, start, end time.Time) Gap {
	return Gap{
		TechnicianID:    techID,
		Start:           start,
		End:             end,
		DurationSeconds: int64(end.Sub(start).Seconds()),
	}
}

// FindGaps returns the unavailable intervals between the shift envelope and
// the given windows: the lead-in before the first window, the holes between
// consecutive windows, and the tail after the last one. If windows is empty
// the whole envelope is one gap. Non-positive gaps are elided.
func FindGaps(techID int64, envelope TimeWindow, windows []TimeWindow) []Gap {
	if len(windows) == 0 {
		if envelope.IsValid() {
			return []Gap{NewGap(techID, envelope.Start, envelope.End)}
		}
		return nil
	}

	var gaps []Gap
	appendGap := func(start, end time.Time) {
		if end.After(start) {
			gaps = append(gaps, NewGap(techID, start, end))
		}
	}

	appendGap(envelope.Start, windows[0].Start)
	for i := 0; i < len(windows)-1; i++ {
		appendGap(windows[i].End, windows[i+1].Start)
	}
	appendGap(windows[len(windows)-1].End, envelope.End)
	return gaps
}
