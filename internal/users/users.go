// Package users holds the tracked user model and user-level queries.
package users

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a lookup targets a user id that does not exist.
var ErrUserNotFound = errors.New("user not found")

// Device categories reported by the tracking client.
const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

// User is a tracked end user of the instrumented product.
// PasswordHash is populated by the account system that owns sign-up;
// this service only reads it (seeding aside).
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Device       string    `gorm:"size:50;index" json:"device"`
	Country      string    `gorm:"size:10;index" json:"country"`
	CreatedAt    time.Time `json:"created_at"`
}

// FindQuery narrows user listings. Search matches name or email,
// case-insensitive substring.
type FindQuery struct {
	Device  string
	Country string
	Search  string
	Offset  int
	Limit   int
}

func applyFindQuery(db *gorm.DB, q FindQuery) *gorm.DB {
	scope := db.Model(&User{})
	if q.Device != "" {
		scope = scope.Where("device = ?", q.Device)
	}
	if q.Country != "" {
		scope = scope.Where("country = ?", q.Country)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		scope = scope.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	return scope
}

// GetUserByID fetches a single user, mapping gorm's not-found to ErrUserNotFound.
func GetUserByID(db *gorm.DB, id uint) (User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// FindUsers returns a page of users matching the query, ordered by id.
func FindUsers(db *gorm.DB, q FindQuery) ([]User, error) {
	var result []User
	scope := applyFindQuery(db, q).Order("id ASC")
	if q.Limit > 0 {
		scope = scope.Offset(q.Offset).Limit(q.Limit)
	}
	if err := scope.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	return result, nil
}

// CountUsers returns the total number of users matching the query,
// ignoring pagination.
func CountUsers(db *gorm.DB, q FindQuery) (int64, error) {
	var count int64
	if err := applyFindQuery(db, q).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// UserIDs extracts the ids from a user slice, preserving order.
func UserIDs(list []User) []uint {
	ids := make([]uint, len(list))
	for i, u := range list {
		ids[i] = u.ID
	}
	return ids
}
