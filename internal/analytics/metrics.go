package analytics

import (
	"fmt"

	"gorm.io/gorm"

	"clickpulse/internal/events"
	"clickpulse/internal/sessions"
	"clickpulse/internal/users"
)

// Metrics are the scalar KPIs of a filter scope.
type Metrics struct {
	TotalEvents   int64   `json:"total_events"`
	Purchases     int64   `json:"purchases"`
	TotalTimeSec  float64 `json:"total_time_sec"`
	UniqueUsers   int64   `json:"unique_users"`
	TotalSessions int64   `json:"total_sessions"`
	TotalUsers    int64   `json:"total_users"`
}

// eventScope applies the filter's time range, event type, and user id
// restriction to the events table. Device/country/search are user-level
// predicates and are deliberately not applied here.
func eventScope(db *gorm.DB, f Filter) *gorm.DB {
	scope := db.Model(&events.Event{}).
		Where("timestamp >= ? AND timestamp <= ?", f.Range.From, f.Range.To)
	if f.EventType != "" {
		scope = scope.Where("event_type = ?", f.EventType)
	}
	if len(f.UserIDs) > 0 {
		scope = scope.Where("user_id IN ?", f.UserIDs)
	}
	return scope
}

// GetMetrics computes the KPI scalars for the filter scope. Event-derived
// numbers come from one grouped query; session and user counts are
// independent queries over their own tables.
func GetMetrics(db *gorm.DB, f Filter) (Metrics, error) {
	var row struct {
		TotalEvents  int64
		Purchases    int64
		TotalTimeSec float64
		UniqueUsers  int64
	}

	err := eventScope(db, f).
		Select(`
			COUNT(*) AS total_events,
			COALESCE(SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END), 0) AS purchases,
			COALESCE(SUM(duration_sec), 0) AS total_time_sec,
			COUNT(DISTINCT user_id) AS unique_users`,
			events.EventTypePurchase).
		Scan(&row).Error
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to aggregate event metrics: %w", err)
	}

	totalSessions, err := sessions.CountSessionsStartedBetween(db, f.Range.From, f.Range.To, f.UserIDs)
	if err != nil {
		return Metrics{}, err
	}

	totalUsers, err := users.CountUsers(db, users.FindQuery{
		Device:  f.Device,
		Country: f.Country,
		Search:  f.Search,
	})
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		TotalEvents:   row.TotalEvents,
		Purchases:     row.Purchases,
		TotalTimeSec:  row.TotalTimeSec,
		UniqueUsers:   row.UniqueUsers,
		TotalSessions: totalSessions,
		TotalUsers:    totalUsers,
	}, nil
}
