package analytics

import (
	"fmt"

	"gorm.io/gorm"

	"clickpulse/internal/events"
)

// TrendPoint is one day in a trend series. Days with zero matching events
// are not synthesized; only days that appear in the filtered event set show
// up, sorted ascending.
type TrendPoint struct {
	Date       string  `json:"date"`
	PageVisits int64   `json:"page_visits"`
	Purchases  int64   `json:"purchases"`
	TimeSpent  float64 `json:"time_spent"`
}

// GetTrend buckets the filtered events by calendar day. Timestamps are
// stored UTC, so strftime over them yields UTC calendar days.
func GetTrend(db *gorm.DB, f Filter) ([]TrendPoint, error) {
	var rows []TrendPoint

	err := eventScope(db, f).
		Select(`
			strftime('%Y-%m-%d', timestamp) AS date,
			COALESCE(SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END), 0) AS page_visits,
			COALESCE(SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END), 0) AS purchases,
			COALESCE(SUM(duration_sec), 0) AS time_spent`,
			events.EventTypePageVisit, events.EventTypePurchase).
		Group("strftime('%Y-%m-%d', timestamp)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trend: %w", err)
	}

	if rows == nil {
		rows = []TrendPoint{}
	}
	return rows, nil
}
