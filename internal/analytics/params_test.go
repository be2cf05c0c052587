package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFilterDefaults(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	f := NormalizeFilter(RawFilter{}, now)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, now, f.Range.To)
	assert.Equal(t, now.AddDate(0, 0, -30), f.Range.From)
	assert.Empty(t, f.Device)
	assert.Empty(t, f.Country)
}

func TestNormalizeFilterPaginationFloors(t *testing.T) {
	now := time.Now().UTC()

	f := NormalizeFilter(RawFilter{Page: -3, Limit: 0}, now)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = NormalizeFilter(RawFilter{Page: 4, Limit: 25}, now)
	assert.Equal(t, 4, f.Page)
	assert.Equal(t, 25, f.Limit)
	assert.Equal(t, 75, f.Offset())
}

func TestNormalizeFilterLimitCap(t *testing.T) {
	f := NormalizeFilter(RawFilter{Limit: 100000}, time.Now().UTC())
	assert.Equal(t, MaxLimit, f.Limit)
}

func TestNormalizeFilterCountryCanonicalization(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		raw      string
		expected string
	}{
		{"IN", "IN"},
		{"in", "IN"},
		{"IND", "IN"},
		{"India", "IN"},
		{"United States of America", "US"},
		{"DE", "DE"},
		{"", ""},
		{"Atlantis", "ATLANTIS"}, // unresolvable passes through uppercased
	}

	for _, tc := range cases {
		f := NormalizeFilter(RawFilter{Country: tc.raw}, now)
		assert.Equal(t, tc.expected, f.Country, "input %q", tc.raw)
	}
}

func TestNormalizeFilterTrimsPredicates(t *testing.T) {
	f := NormalizeFilter(RawFilter{
		Device:    "  Desktop ",
		EventType: " purchase ",
		Search:    "  alice ",
	}, time.Now().UTC())

	assert.Equal(t, "Desktop", f.Device)
	assert.Equal(t, "purchase", f.EventType)
	assert.Equal(t, "alice", f.Search)
}

func TestWithUserIDsCopies(t *testing.T) {
	f := NormalizeFilter(RawFilter{}, time.Now().UTC())
	restricted := f.WithUserIDs([]uint{1, 2})

	assert.Nil(t, f.UserIDs)
	assert.Equal(t, []uint{1, 2}, restricted.UserIDs)
}
