// Package sessions holds the browsing session model and session queries.
package sessions

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Session groups a user's events into one visit. EndedAt and EventCount are
// maintained on ingestion; EndedAt is nil while the session has no events
// past its start.
type Session struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Persona    string     `gorm:"size:100" json:"persona"`
	StartedAt  time.Time  `gorm:"index;not null" json:"started_at"`
	EndedAt    *time.Time `json:"ended_at"`
	EventCount int        `gorm:"not null;default:0" json:"event_count"`
	CreatedAt  time.Time  `json:"created_at"`
}

// GetSessionsForUser returns the user's sessions whose start falls inside the
// window, newest first.
func GetSessionsForUser(db *gorm.DB, userID uint, from, to time.Time) ([]Session, error) {
	var result []Session
	err := db.
		Where("user_id = ? AND started_at >= ? AND started_at <= ?", userID, from, to).
		Order("started_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions for user %d: %w", userID, err)
	}
	return result, nil
}

// CountSessionsStartedBetween counts sessions whose start falls inside the
// window, regardless of when they ended. A non-empty userIDs restricts the
// count to those users.
func CountSessionsStartedBetween(db *gorm.DB, from, to time.Time, userIDs []uint) (int64, error) {
	scope := db.Model(&Session{}).
		Where("started_at >= ? AND started_at <= ?", from, to)
	if len(userIDs) > 0 {
		scope = scope.Where("user_id IN ?", userIDs)
	}

	var count int64
	if err := scope.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// TouchForEvent records one more event against the session: the event count
// is incremented and the session end is extended when the event is newer.
// Intended to run inside the same transaction as the event insert.
func TouchForEvent(tx *gorm.DB, sessionID uint, timestamp time.Time) error {
	if sessionID == 0 {
		return nil
	}

	var session Session
	if err := tx.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Events may reference sessions tracked elsewhere; nothing to update.
			return nil
		}
		return fmt.Errorf("failed to load session %d: %w", sessionID, err)
	}

	updates := map[string]interface{}{
		"event_count": gorm.Expr("event_count + 1"),
	}
	if session.EndedAt == nil || timestamp.After(*session.EndedAt) {
		updates["ended_at"] = timestamp
	}

	if err := tx.Model(&Session{}).Where("id = ?", sessionID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to touch session %d: %w", sessionID, err)
	}
	return nil
}
