package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPurchase() PurchasePayload {
	return PurchasePayload{
		Currency:      "INR",
		PaymentMethod: "UPI",
		TotalAmount:   250,
		Items: []PurchaseItem{
			{ProductID: "p1", ProductName: "Mouse", Category: "Electronics", Price: 50, Quantity: 3, Total: 150},
			{ProductID: "p2", ProductName: "T-Shirt", Category: "Clothing", Price: 100, Quantity: 1, Total: 100},
		},
	}
}

func TestValidateRequiredFields(t *testing.T) {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		event    Event
		expected error
	}{
		{"missing user", Event{EventType: EventTypePageVisit, Timestamp: ts}, ErrMissingUserID},
		{"missing type", Event{UserID: 1, Timestamp: ts}, ErrMissingEventType},
		{"missing timestamp", Event{UserID: 1, EventType: EventTypePageVisit}, ErrMissingTimestamp},
		{"negative duration", func() Event {
			e := NewEvent(1, 0, EventTypePageVisit, ts)
			e.DurationSec = -1
			return e
		}(), ErrNegativeDuration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			require.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestValidatePurchasePresence(t *testing.T) {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	// Purchase events require a payload.
	bare := NewEvent(1, 2, EventTypePurchase, ts)
	require.ErrorIs(t, bare.Validate(), ErrMissingPurchase)

	// Non-purchase events must not carry one.
	visit := NewEvent(1, 2, EventTypePageVisit, ts)
	payload := validPurchase()
	visit.Purchase = &payload
	require.ErrorIs(t, visit.Validate(), ErrUnexpectedPurchase)

	// The constructor pairing is valid by construction.
	purchase := NewPurchaseEvent(1, 2, ts, validPurchase())
	assert.NoError(t, purchase.Validate())
}

func TestValidatePurchaseAmounts(t *testing.T) {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	badLine := validPurchase()
	badLine.Items[0].Total = 999
	e := NewPurchaseEvent(1, 2, ts, badLine)
	require.ErrorIs(t, e.Validate(), ErrPurchaseLineTotal)

	badSum := validPurchase()
	badSum.TotalAmount = 1
	e = NewPurchaseEvent(1, 2, ts, badSum)
	require.ErrorIs(t, e.Validate(), ErrPurchaseSum)
}

func TestValidatePurchaseFloatTolerance(t *testing.T) {
	ts := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	payload := PurchasePayload{
		Currency:      "USD",
		PaymentMethod: "Credit Card",
		TotalAmount:   0.3,
		Items: []PurchaseItem{
			{ProductID: "p1", Price: 0.1, Quantity: 3, Total: 0.3},
		},
	}
	e := NewPurchaseEvent(1, 2, ts, payload)
	assert.NoError(t, e.Validate())
}

func TestNewEventNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2025, 1, 1, 15, 30, 0, 0, loc)

	e := NewEvent(1, 0, EventTypePageVisit, local)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.True(t, e.Timestamp.Equal(local))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrMissingUserID))
	assert.True(t, IsValidationError(ErrPurchaseSum))
	assert.False(t, IsValidationError(assert.AnError))
}
