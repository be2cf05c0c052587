// Package seeder generates synthetic users, sessions, and events for local
// development and demos.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clickpulse/internal/events"
	"clickpulse/internal/sessions"
	"clickpulse/internal/users"
)

const (
	seedPassword     = "password123"
	insertBatchSize  = 500
	sessionWindowDay = 30
)

var (
	devices   = []string{users.DeviceDesktop, users.DeviceMobile, users.DeviceTablet}
	countries = []string{"IN", "US", "GB", "DE", "CA"}
	pages     = []string{"Home", "Electronics", "Mobiles", "Laptops", "Fashion", "Checkout", "Product"}

	paymentMethods = []string{"UPI", "Credit Card", "Debit Card", "Net Banking", "Wallet"}
)

type catalogEntry struct {
	Name     string
	Category string
	Min, Max int
}

var productCatalog = []catalogEntry{
	{"Wireless Mouse", "Electronics", 499, 1499},
	{"Bluetooth Headphones", "Electronics", 1999, 5999},
	{"Laptop Backpack", "Accessories", 999, 2999},
	{"Smart Watch", "Wearables", 2999, 9999},
	{"USB-C Charger", "Electronics", 699, 1999},
	{"Running Shoes", "Footwear", 2499, 6999},
	{"T-Shirt", "Clothing", 399, 1299},
	{"Office Chair", "Furniture", 4999, 15999},
}

// persona shapes the event mix of a session. Weights do not need to sum to
// anything particular; they are relative.
type persona struct {
	Name    string
	Weights map[string]int
}

var personas = []persona{
	{
		Name: "browser",
		Weights: map[string]int{
			events.EventTypePageVisit:   60,
			events.EventTypeProductView: 25,
			events.EventTypeSearch:      15,
		},
	},
	{
		Name: "researcher",
		Weights: map[string]int{
			events.EventTypePageVisit:   35,
			events.EventTypeProductView: 35,
			events.EventTypeSearch:      20,
			events.EventTypeAddToCart:   10,
		},
	},
	{
		Name: "buyer",
		Weights: map[string]int{
			events.EventTypePageVisit:   25,
			events.EventTypeProductView: 25,
			events.EventTypeAddToCart:   20,
			events.EventTypeCheckout:    15,
			events.EventTypePurchase:    15,
		},
	},
	{
		Name: "bargain_hunter",
		Weights: map[string]int{
			events.EventTypePageVisit:   30,
			events.EventTypeSearch:      30,
			events.EventTypeProductView: 25,
			events.EventTypeAddToCart:   10,
			events.EventTypePurchase:    5,
		},
	},
}

// Seeder handles the synthetic data generation process.
type Seeder struct {
	DBManager cartridge.DBManager
	Logger    *slog.Logger
	UserCount int
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, userCount int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if userCount <= 0 {
		userCount = 100
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		UserCount: userCount,
	}
}

func randomOf[T any](list []T) T {
	return list[rand.IntN(len(list))]
}

func randomInt(min, max int) int {
	return min + rand.IntN(max-min+1)
}

func pickEventType(p persona) string {
	total := 0
	for _, w := range p.Weights {
		total += w
	}
	n := rand.IntN(total)
	for eventType, w := range p.Weights {
		if n < w {
			return eventType
		}
		n -= w
	}
	return events.EventTypePageVisit
}

func generatePurchase() events.PurchasePayload {
	itemCount := randomInt(1, 4)
	items := make([]events.PurchaseItem, 0, itemCount)
	var total float64

	for i := 0; i < itemCount; i++ {
		product := randomOf(productCatalog)
		quantity := randomInt(1, 3)
		price := float64(randomInt(product.Min, product.Max))
		lineTotal := price * float64(quantity)

		items = append(items, events.PurchaseItem{
			ProductID:   fmt.Sprintf("prod_%08x", rand.Uint32()),
			ProductName: product.Name,
			Category:    product.Category,
			Price:       price,
			Quantity:    quantity,
			Total:       lineTotal,
		})
		total += lineTotal
	}

	return events.PurchasePayload{
		Currency:      "INR",
		PaymentMethod: randomOf(paymentMethods),
		TotalAmount:   total,
		Items:         items,
	}
}

func randomMetadata() string {
	meta := map[string]interface{}{
		"referrer":     randomOf(pages),
		"scroll_depth": randomInt(10, 100),
	}
	raw, _ := json.Marshal(meta)
	return string(raw)
}

// Run generates users, their sessions, and persona-shaped events. Existing
// rows are left alone; seeded emails continue from the current user count.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	db := s.DBManager.GetConnection()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	var existing int64
	if err := db.Model(&users.User{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count existing users: %w", err)
	}

	s.Logger.Info("Seeding users", slog.Int("count", s.UserCount))
	userList := make([]users.User, s.UserCount)
	now := time.Now().UTC()
	for i := range userList {
		n := existing + int64(i) + 1
		userList[i] = users.User{
			Name:         fmt.Sprintf("User %d", n),
			Email:        fmt.Sprintf("user%d@example.com", n),
			PasswordHash: string(passwordHash),
			Device:       randomOf(devices),
			Country:      randomOf(countries),
			CreatedAt:    now,
		}
	}

	err = sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
		return tx.CreateInBatches(&userList, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert users: %w", err)
	}

	s.Logger.Info("Seeding sessions and events")
	totalSessions := 0
	totalEvents := 0

	for i := range userList {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		user := userList[i]
		sessionCount := randomInt(3, 6)

		err := sqlite.PerformWrite(s.Logger, db, func(tx *gorm.DB) error {
			for j := 0; j < sessionCount; j++ {
				p := randomOf(personas)
				startedAt := now.AddDate(0, 0, -randomInt(0, sessionWindowDay)).
					Add(-time.Duration(randomInt(0, 23)) * time.Hour)

				session := sessions.Session{
					UserID:    user.ID,
					Persona:   p.Name,
					StartedAt: startedAt,
					CreatedAt: now,
				}
				if err := tx.Create(&session).Error; err != nil {
					return fmt.Errorf("failed to insert session: %w", err)
				}

				batch, endedAt := s.buildSessionEvents(user, session, p)
				if err := tx.CreateInBatches(&batch, insertBatchSize).Error; err != nil {
					return fmt.Errorf("failed to insert events: %w", err)
				}

				session.EventCount = len(batch)
				session.EndedAt = &endedAt
				if err := tx.Save(&session).Error; err != nil {
					return fmt.Errorf("failed to update session: %w", err)
				}

				totalSessions++
				totalEvents += len(batch)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	s.Logger.Info("Seed complete",
		slog.Int("users", len(userList)),
		slog.Int("sessions", totalSessions),
		slog.Int("events", totalEvents),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// buildSessionEvents produces the session's event trail: a session_start
// followed by persona-weighted interactions spaced minutes apart.
func (s *Seeder) buildSessionEvents(user users.User, session sessions.Session, p persona) ([]events.Event, time.Time) {
	eventCount := randomInt(10, 30)
	batch := make([]events.Event, 0, eventCount+1)
	current := session.StartedAt

	opening := events.NewEvent(user.ID, session.ID, events.EventTypeSessionStart, current)
	opening.Device = user.Device
	opening.Country = user.Country
	opening.Page = "Home"
	opening.CreatedAt = time.Now().UTC()
	batch = append(batch, opening)

	for i := 0; i < eventCount; i++ {
		current = current.Add(time.Duration(randomInt(1, 30)) * time.Minute)
		eventType := pickEventType(p)

		var e events.Event
		if eventType == events.EventTypePurchase {
			e = events.NewPurchaseEvent(user.ID, session.ID, current, generatePurchase())
		} else {
			e = events.NewEvent(user.ID, session.ID, eventType, current)
			e.Metadata = randomMetadata()
		}

		if eventType == events.EventTypePageVisit || eventType == events.EventTypeProductView {
			e.DurationSec = float64(randomInt(5, 60))
		}
		e.Page = randomOf(pages)
		e.Device = user.Device
		e.Country = user.Country
		e.CreatedAt = time.Now().UTC()

		batch = append(batch, e)
	}

	return batch, current
}
