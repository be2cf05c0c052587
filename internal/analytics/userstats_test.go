package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickpulse/internal/analytics"
	"clickpulse/internal/events"
	"clickpulse/internal/testsupport"
	"clickpulse/internal/users"
)

func TestGetUserStatsZeroFill(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	active := testsupport.CreateTestUser(t, db, "Active", "active@example.com", users.DeviceDesktop, "US")
	idle := testsupport.CreateTestUser(t, db, "Idle", "idle@example.com", users.DeviceMobile, "IN")

	visit := events.NewEvent(active.ID, events.NoSessionID, events.EventTypePageVisit, day(2025, 1, 10, 10))
	visit.DurationSec = 12
	testsupport.CreateTestEvent(t, db, visit)

	purchase := events.NewPurchaseEvent(active.ID, events.NoSessionID, day(2025, 1, 10, 11), events.PurchasePayload{
		Currency: "INR", PaymentMethod: "UPI", TotalAmount: 40,
		Items: []events.PurchaseItem{{ProductID: "p1", Price: 20, Quantity: 2, Total: 40}},
	})
	testsupport.CreateTestEvent(t, db, purchase)

	f := rangeFilter(day(2025, 1, 1, 0), day(2025, 1, 31, 0))
	stats, err := analytics.GetUserStats(db, f, []uint{active.ID, idle.ID})
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, int64(1), stats[active.ID].PagesVisited)
	assert.Equal(t, int64(1), stats[active.ID].Purchases)
	assert.Equal(t, float64(12), stats[active.ID].TimeSpent)

	// A user with no matching events appears with explicit zeros.
	idleStats, ok := stats[idle.ID]
	require.True(t, ok)
	assert.Zero(t, idleStats.PagesVisited)
	assert.Zero(t, idleStats.Purchases)
	assert.Zero(t, idleStats.TimeSpent)
}

func TestGetUserStatsHonorsTimeRange(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	user := testsupport.CreateTestUser(t, db, "Alice", "alice@example.com", users.DeviceDesktop, "US")

	old := events.NewEvent(user.ID, events.NoSessionID, events.EventTypePageVisit, day(2024, 6, 1, 10))
	old.DurationSec = 100
	testsupport.CreateTestEvent(t, db, old)

	f := rangeFilter(day(2025, 1, 1, 0), day(2025, 1, 31, 0))
	stats, err := analytics.GetUserStats(db, f, []uint{user.ID})
	require.NoError(t, err)

	assert.Zero(t, stats[user.ID].PagesVisited)
	assert.Zero(t, stats[user.ID].TimeSpent)
}

func TestGetUserStatsEmptyInput(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	stats, err := analytics.GetUserStats(db, rangeFilter(day(2025, 1, 1, 0), day(2025, 1, 31, 0)), nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
}
