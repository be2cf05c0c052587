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

func TestGetUserJourneyNotFound(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := analytics.GetUserJourney(db, rangeFilter(day(2025, 1, 1, 0), day(2025, 1, 31, 0)), 424242)
	require.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestGetUserJourneyComposite(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	user := testsupport.CreateTestUser(t, db, "Alice", "alice@example.com", users.DeviceDesktop, "US")
	other := testsupport.CreateTestUser(t, db, "Bob", "bob@example.com", users.DeviceMobile, "IN")

	s1 := testsupport.CreateTestSession(t, db, user.ID, "buyer", day(2025, 1, 2, 9))
	s2 := testsupport.CreateTestSession(t, db, user.ID, "browser", day(2025, 1, 5, 9))

	visit := events.NewEvent(user.ID, s1.ID, events.EventTypePageVisit, day(2025, 1, 2, 10))
	visit.DurationSec = 30
	testsupport.CreateTestEvent(t, db, visit)

	testsupport.CreateTestEvent(t, db, events.NewPurchaseEvent(user.ID, s1.ID, day(2025, 1, 2, 11), events.PurchasePayload{
		Currency: "INR", PaymentMethod: "UPI", TotalAmount: 50,
		Items: []events.PurchaseItem{{ProductID: "p1", Price: 25, Quantity: 2, Total: 50}},
	}))

	browse := events.NewEvent(user.ID, s2.ID, events.EventTypeProductView, day(2025, 1, 5, 10))
	browse.DurationSec = 10
	testsupport.CreateTestEvent(t, db, browse)

	// Event without a session: excluded from sessions, counted overall.
	loose := events.NewEvent(user.ID, events.NoSessionID, events.EventTypePageVisit, day(2025, 1, 7, 10))
	loose.DurationSec = 5
	loose = testsupport.CreateTestEvent(t, db, loose)

	// Another user's event must never leak into this journey.
	testsupport.CreateTestEvent(t, db, events.NewEvent(other.ID, events.NoSessionID, events.EventTypePageVisit, day(2025, 1, 2, 10)))

	journey, err := analytics.GetUserJourney(db, rangeFilter(day(2025, 1, 1, 0), day(2025, 1, 31, 0)), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, journey.User.ID)
	require.Len(t, journey.Sessions, 2)

	// Sessions come back newest first.
	assert.Equal(t, s2.ID, journey.Sessions[0].Session.ID)
	assert.Equal(t, s1.ID, journey.Sessions[1].Session.ID)

	buyerSession := journey.Sessions[1]
	assert.Equal(t, int64(1), buyerSession.Stats.PagesVisited)
	assert.Equal(t, int64(1), buyerSession.Stats.Purchases)
	assert.Equal(t, float64(30), buyerSession.Stats.TimeSpent)
	assert.Len(t, buyerSession.Events, 2)

	require.Len(t, journey.NoSessionEvents, 1)
	assert.Equal(t, loose.ID, journey.NoSessionEvents[0].ID)

	// Overall metrics include the no-session event.
	assert.Equal(t, int64(4), journey.Metrics.TotalEvents)
	assert.Equal(t, int64(1), journey.Metrics.Purchases)
	assert.Equal(t, float64(45), journey.Metrics.TotalTimeSec)
	assert.Equal(t, int64(2), journey.Metrics.TotalSessions)

	// Per-user trend covers every day with activity, ascending.
	require.Len(t, journey.Trend, 3)
	assert.Equal(t, "2025-01-02", journey.Trend[0].Date)
	assert.Equal(t, "2025-01-05", journey.Trend[1].Date)
	assert.Equal(t, "2025-01-07", journey.Trend[2].Date)
	assert.Equal(t, int64(1), journey.Trend[0].PageVisits)
	assert.Equal(t, int64(1), journey.Trend[0].Purchases)
}

func TestGetUserJourneyEventTypeRestriction(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	user := testsupport.CreateTestUser(t, db, "Alice", "alice@example.com", users.DeviceDesktop, "US")
	s := testsupport.CreateTestSession(t, db, user.ID, "", day(2025, 1, 2, 9))

	testsupport.CreateTestEvent(t, db, events.NewEvent(user.ID, s.ID, events.EventTypePageVisit, day(2025, 1, 2, 10)))
	testsupport.CreateTestEvent(t, db, events.NewEvent(user.ID, s.ID, events.EventTypeSearch, day(2025, 1, 2, 11)))

	f := rangeFilter(day(2025, 1, 1, 0), day(2025, 1, 31, 0))
	f.EventType = events.EventTypeSearch

	journey, err := analytics.GetUserJourney(db, f, user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), journey.Metrics.TotalEvents)
	require.Len(t, journey.Sessions, 1)
	assert.Len(t, journey.Sessions[0].Events, 1)
	assert.Equal(t, events.EventTypeSearch, journey.Sessions[0].Events[0].EventType)
}
