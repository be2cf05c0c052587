package analytics

import (
	"fmt"

	"gorm.io/gorm"

	"clickpulse/internal/events"
)

// UserStats are the per-user derived counts for a filter scope.
type UserStats struct {
	PagesVisited int64   `json:"pages_visited"`
	Purchases    int64   `json:"purchases"`
	TimeSpent    float64 `json:"time_spent"`
}

// GetUserStats computes stats for every user in userIDs with a single
// group-by over the filtered event set. Users without matching events get
// an explicit zero entry; cost scales with filtered event volume, not with
// page size times event count.
func GetUserStats(db *gorm.DB, f Filter, userIDs []uint) (map[uint]UserStats, error) {
	stats := make(map[uint]UserStats, len(userIDs))
	for _, id := range userIDs {
		stats[id] = UserStats{}
	}
	if len(userIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		UserID       uint
		PagesVisited int64
		Purchases    int64
		TimeSpent    float64
	}

	err := eventScope(db, f.WithUserIDs(userIDs)).
		Select(`
			user_id,
			COALESCE(SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END), 0) AS pages_visited,
			COALESCE(SUM(CASE WHEN event_type = ? THEN 1 ELSE 0 END), 0) AS purchases,
			COALESCE(SUM(duration_sec), 0) AS time_spent`,
			events.EventTypePageVisit, events.EventTypePurchase).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user stats: %w", err)
	}

	for _, row := range rows {
		stats[row.UserID] = UserStats{
			PagesVisited: row.PagesVisited,
			Purchases:    row.Purchases,
			TimeSpent:    row.TimeSpent,
		}
	}
	return stats, nil
}
