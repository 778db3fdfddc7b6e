// Package timeutil handles the two clock domains the replanner lives in:
// instants (always UTC) and business-timezone wall times ("HH:MM:SS" strings
// stored against local calendar days). Conversions between them happen only
// here. DST is handled by the IANA zone data: the offset used is always the
// offset in effect at the target instant.
package timeutil

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD date label used throughout the
// planner. Date keys are always derived from UTC components.
const DateKeyLayout = "2006-01-02"

// ClockLayout is the "HH:MM:SS" wall-time format stored in the database.
const ClockLayout = "15:04:05"

// DateKey returns the YYYY-MM-DD label for an instant using UTC components.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD label into midnight UTC of that day.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return t, nil
}

// StartOfUTCDay truncates an instant to midnight UTC.
func StartOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays steps an instant forward by whole UTC calendar days.
func AddDays(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, days)
}

// SameUTCDay reports whether two instants fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// AtBusinessTime combines the UTC calendar day of date with an "HH:MM:SS"
// wall time in the business timezone, returning the corresponding UTC instant.
// The offset applied is the one in effect at the resulting instant, so times
// across a DST transition resolve correctly.
func AtBusinessTime(loc *time.Location, date time.Time, clock string) (time.Time, error) {
	hh, mm, ss, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	u := date.UTC()
	local := time.Date(u.Year(), u.Month(), u.Day(), hh, mm, ss, 0, loc)
	return local.UTC(), nil
}

// FormatBusiness renders a UTC instant as a business-timezone timestamp.
// Inverse of AtBusinessTime modulo the second.
func FormatBusiness(loc *time.Location, t time.Time) string {
	return t.In(loc).Format("2006-01-02 15:04:05")
}

// UTCOffset returns the business timezone's offset from UTC at the given
// instant. During daylight saving this differs from the standard offset.
func UTCOffset(loc *time.Location, t time.Time) time.Duration {
	_, offset := t.In(loc).Zone()
	return time.Duration(offset) * time.Second
}

func parseClock(clock string) (hh, mm, ss int, err error) {
	parsed, perr := time.Parse(ClockLayout, clock)
	if perr != nil {
		// Some rows store "HH:MM" without seconds.
		parsed, perr = time.Parse("15:04", clock)
		if perr != nil {
			return 0, 0, 0, fmt.Errorf("parse clock %q: %w", clock, perr)
		}
	}
	return parsed.Hour(), parsed.Minute(), parsed.Second(), nil
}
