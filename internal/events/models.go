// Package events holds the interaction event model, validation, and the
// ingestion write path.
package events

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Well-known event types. The set is open: clients may send additional
// types, which flow through aggregation untouched.
const (
	EventTypeSessionStart = "session_start"
	EventTypePageVisit    = "page_visit"
	EventTypeProductView  = "product_view"
	EventTypeSearch       = "search"
	EventTypeAddToCart    = "add_to_cart"
	EventTypeCheckout     = "checkout"
	EventTypePurchase     = "purchase"
)

// NoSessionID marks events that arrived without a session reference.
// They are excluded from per-session stats but still count toward
// user-level and global aggregates.
const NoSessionID uint = 0

// Validation errors surfaced to the ingestion API as invalid-argument.
var (
	ErrMissingUserID      = errors.New("event requires a user id")
	ErrMissingEventType   = errors.New("event requires an event type")
	ErrMissingTimestamp   = errors.New("event requires a timestamp")
	ErrNegativeDuration   = errors.New("event duration cannot be negative")
	ErrUnexpectedPurchase = errors.New("purchase payload is only valid on purchase events")
	ErrMissingPurchase    = errors.New("purchase events require a purchase payload")
	ErrPurchaseLineTotal  = errors.New("purchase item total must equal price times quantity")
	ErrPurchaseSum        = errors.New("purchase total amount must equal the sum of item totals")
)

// PurchaseItem is one line of a purchase payload.
type PurchaseItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// PurchasePayload carries the commerce details of a purchase event.
type PurchasePayload struct {
	Currency      string         `json:"currency"`
	PaymentMethod string         `json:"payment_method"`
	TotalAmount   float64        `json:"total_amount"`
	Items         []PurchaseItem `json:"items"`
}

// Event is a single recorded user interaction. Timestamps are stored UTC.
// Purchase is present iff EventType is purchase; Validate enforces this.
type Event struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	UserID      uint             `gorm:"index;not null" json:"user_id"`
	SessionID   uint             `gorm:"index" json:"session_id"`
	EventType   string           `gorm:"size:100;index;not null" json:"event_type"`
	Timestamp   time.Time        `gorm:"index;not null" json:"timestamp"`
	Page        string           `gorm:"size:512" json:"page"`
	DurationSec float64          `json:"duration_sec"`
	Device      string           `gorm:"size:50;index" json:"device"`
	Country     string           `gorm:"size:10;index" json:"country"`
	Purchase    *PurchasePayload `gorm:"serializer:json" json:"purchase,omitempty"`
	Metadata    string           `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewEvent builds a non-purchase event with the timestamp normalized to UTC.
func NewEvent(userID, sessionID uint, eventType string, timestamp time.Time) Event {
	return Event{
		UserID:    userID,
		SessionID: sessionID,
		EventType: eventType,
		Timestamp: timestamp.UTC(),
	}
}

// NewPurchaseEvent builds a purchase event carrying its payload.
func NewPurchaseEvent(userID, sessionID uint, timestamp time.Time, payload PurchasePayload) Event {
	e := NewEvent(userID, sessionID, EventTypePurchase, timestamp)
	e.Purchase = &payload
	return e
}

// amountsEqual compares money amounts with a cent-level tolerance so that
// float arithmetic on line items does not reject valid payloads.
func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// Validate checks the structural invariants before an event is persisted.
func (e *Event) Validate() error {
	if e.UserID == 0 {
		return ErrMissingUserID
	}
	if e.EventType == "" {
		return ErrMissingEventType
	}
	if e.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	if e.DurationSec < 0 {
		return ErrNegativeDuration
	}

	if e.EventType != EventTypePurchase {
		if e.Purchase != nil {
			return ErrUnexpectedPurchase
		}
		return nil
	}

	if e.Purchase == nil {
		return ErrMissingPurchase
	}

	var sum float64
	for i, item := range e.Purchase.Items {
		expected := item.Price * float64(item.Quantity)
		if !amountsEqual(item.Total, expected) {
			return fmt.Errorf("item %d (%s): %w", i, item.ProductID, ErrPurchaseLineTotal)
		}
		sum += item.Total
	}
	if !amountsEqual(e.Purchase.TotalAmount, sum) {
		return ErrPurchaseSum
	}
	return nil
}
