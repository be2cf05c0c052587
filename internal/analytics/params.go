// Package analytics converts the raw event log into reporting output:
// scalar KPIs, per-user stats, daily trends, funnel conversion, and
// per-user journey timelines.
package analytics

import (
	"strings"
	"time"

	"github.com/pariz/gountries"

	"clickpulse/internal/timeframe"
)

// Pagination bounds. DefaultLimit serves user-facing pages; event listings
// use DefaultEventLimit. MaxLimit caps every multi-row output.
const (
	DefaultLimit      = 10
	DefaultEventLimit = 50
	MaxLimit          = 500
)

// RawFilter carries unvalidated query parameters exactly as received.
type RawFilter struct {
	From      string
	To        string
	Device    string
	Country   string
	EventType string
	Search    string
	Page      int
	Limit     int
}

// Filter is the canonical, fully resolved filter passed by value to every
// aggregation function. Range is always populated with From <= To.
// Device, Country, and Search scope the user-level queries; EventType and
// UserIDs scope the event-level queries.
type Filter struct {
	Range     timeframe.TimeRange
	Device    string
	Country   string
	EventType string
	Search    string
	Page      int
	Limit     int
	UserIDs   []uint
}

var countryQuery = gountries.New()

// canonicalCountry resolves alpha-2, alpha-3, or common-name country input
// to the canonical alpha-2 code. Unresolvable input passes through
// uppercased so stored free-form codes still match.
func canonicalCountry(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) == 2 || len(raw) == 3 {
		if c, err := countryQuery.FindCountryByAlpha(raw); err == nil {
			return c.Alpha2
		}
	}
	if c, err := countryQuery.FindCountryByName(raw); err == nil {
		return c.Alpha2
	}
	return strings.ToUpper(raw)
}

// NormalizeFilter builds the canonical filter from raw request input.
// Unparseable dates are treated as absent bounds, page and limit are floored
// to 1, and the limit is capped at MaxLimit.
func NormalizeFilter(raw RawFilter, now time.Time) Filter {
	f := Filter{
		Range:     timeframe.Resolve(raw.From, raw.To, now),
		Device:    strings.TrimSpace(raw.Device),
		Country:   canonicalCountry(raw.Country),
		EventType: strings.TrimSpace(raw.EventType),
		Search:    strings.TrimSpace(raw.Search),
		Page:      raw.Page,
		Limit:     raw.Limit,
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	return f
}

// Offset returns the row offset implied by page and limit.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// WithUserIDs returns a copy of the filter restricted to the given user ids.
func (f Filter) WithUserIDs(ids []uint) Filter {
	f.UserIDs = ids
	return f
}
