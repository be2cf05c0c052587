// Package timeframe resolves raw date query parameters into concrete UTC ranges.
package timeframe

import (
	"time"
)

// DefaultWindowDays is the reporting window applied when no bounds are given.
const DefaultWindowDays = 30

// acceptedLayouts are the date formats tolerated on from/to query parameters.
// Anything else is treated as an absent bound rather than an error.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// TimeRange is a resolved reporting window. From and To are always set,
// normalized to UTC, and From never exceeds To.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// ParseDate parses a raw date string from a query parameter.
// Returns a zero time and false when the value is empty or unparseable.
func ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Resolve turns optional raw bounds into a concrete TimeRange.
// Missing "to" defaults to now; missing "from" defaults to
// DefaultWindowDays before now, regardless of the supplied "to".
// Inverted bounds are swapped so the invariant From <= To always holds.
func Resolve(rawFrom, rawTo string, now time.Time) TimeRange {
	now = now.UTC()

	to, ok := ParseDate(rawTo)
	if !ok {
		to = now
	}

	from, ok := ParseDate(rawFrom)
	if !ok {
		from = now.AddDate(0, 0, -DefaultWindowDays)
	}

	if from.After(to) {
		from, to = to, from
	}

	return TimeRange{From: from, To: to}
}

// Contains reports whether t falls inside the range (inclusive bounds).
func (r TimeRange) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.From) && !t.After(r.To)
}
