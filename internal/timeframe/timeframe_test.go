package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"rfc3339", "2025-01-15T10:30:00Z", true},
		{"date only", "2025-01-15", true},
		{"datetime no zone", "2025-01-15T10:30:00", true},
		{"empty", "", false},
		{"garbage", "not-a-date", false},
		{"partial", "2025-13-99", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, ok := ParseDate(tc.raw)
			assert.Equal(t, tc.valid, ok)
			if ok {
				assert.Equal(t, time.UTC, parsed.Location())
			}
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	r := Resolve("", "", now)
	assert.Equal(t, now, r.To)
	assert.Equal(t, now.AddDate(0, 0, -DefaultWindowDays), r.From)
}

func TestResolvePartialBounds(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	r := Resolve("2025-06-01", "", now)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, now, r.To)

	r = Resolve("", "2025-06-10", now)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), r.To)
	assert.Equal(t, now.AddDate(0, 0, -DefaultWindowDays), r.From)
}

func TestResolveMissingStartAnchorsToNow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// The default start is always now minus the window, even when the
	// supplied end predates it; the swap then keeps From <= To.
	r := Resolve("", "2025-03-01", now)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, now.AddDate(0, 0, -DefaultWindowDays), r.To)
}

func TestResolveUnparseableTreatedAsAbsent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	r := Resolve("nonsense", "also-nonsense", now)
	assert.Equal(t, now, r.To)
	assert.Equal(t, now.AddDate(0, 0, -DefaultWindowDays), r.From)
}

func TestResolveInvertedBoundsSwapped(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	r := Resolve("2025-06-10", "2025-06-01", now)
	require.True(t, r.From.Before(r.To))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), r.To)
}

func TestContains(t *testing.T) {
	r := TimeRange{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, r.Contains(r.From))
	assert.True(t, r.Contains(r.To))
	assert.True(t, r.Contains(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}
