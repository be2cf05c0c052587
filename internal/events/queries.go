package events

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// EventFilters narrows raw event listings. Zero values mean "no restriction".
type EventFilters struct {
	UserID    uint
	SessionID uint
	EventType string
	Device    string
	Country   string
	From      time.Time
	To        time.Time
	Offset    int
	Limit     int
}

func applyEventFilters(db *gorm.DB, f EventFilters) *gorm.DB {
	scope := db.Model(&Event{})
	if f.UserID != 0 {
		scope = scope.Where("user_id = ?", f.UserID)
	}
	if f.SessionID != 0 {
		scope = scope.Where("session_id = ?", f.SessionID)
	}
	if f.EventType != "" {
		scope = scope.Where("event_type = ?", f.EventType)
	}
	if f.Device != "" {
		scope = scope.Where("device = ?", f.Device)
	}
	if f.Country != "" {
		scope = scope.Where("country = ?", f.Country)
	}
	if !f.From.IsZero() {
		scope = scope.Where("timestamp >= ?", f.From)
	}
	if !f.To.IsZero() {
		scope = scope.Where("timestamp <= ?", f.To)
	}
	return scope
}

// GetFilteredEvents returns a page of events matching the filters, newest
// first, together with the total match count.
func GetFilteredEvents(db *gorm.DB, f EventFilters) ([]Event, int64, error) {
	var total int64
	if err := applyEventFilters(db, f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	var result []Event
	scope := applyEventFilters(db, f).Order("timestamp DESC, id DESC")
	if f.Limit > 0 {
		scope = scope.Offset(f.Offset).Limit(f.Limit)
	}
	if err := scope.Find(&result).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return result, total, nil
}

// GetEventsForUser returns all of a user's events inside the window,
// ascending by timestamp, for journey assembly.
func GetEventsForUser(db *gorm.DB, userID uint, from, to time.Time) ([]Event, error) {
	var result []Event
	err := db.
		Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, from, to).
		Order("timestamp ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get events for user %d: %w", userID, err)
	}
	return result, nil
}
