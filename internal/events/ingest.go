package events

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"clickpulse/internal/pkg/geoip"
	"clickpulse/internal/sessions"
)

var validationErrors = []error{
	ErrMissingUserID,
	ErrMissingEventType,
	ErrMissingTimestamp,
	ErrNegativeDuration,
	ErrUnexpectedPurchase,
	ErrMissingPurchase,
	ErrPurchaseLineTotal,
	ErrPurchaseSum,
}

// IsValidationError reports whether err stems from event validation, so the
// HTTP boundary can answer 400 instead of 500.
func IsValidationError(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// CreateEvents validates and persists a batch of events in one write
// transaction. The batch is all-or-nothing: a single invalid event rejects
// the whole request before anything is written. Events missing a country are
// enriched from the client IP when GeoIP is available. Session event counts
// and end timestamps are kept current in the same transaction.
//
// Ingestion is append-only. Duplicate deliveries create duplicate rows;
// deduplication belongs to the client.
func CreateEvents(dbManager cartridge.DBManager, logger *slog.Logger, batch []Event, clientIP string) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for i := range batch {
		e := &batch[i]
		e.Timestamp = e.Timestamp.UTC()
		e.CreatedAt = now
		if e.Country == "" && clientIP != "" {
			e.Country = geoip.CountryForIP(clientIP)
		}
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("event %d: %w", i, err)
		}
	}

	err := sqlite.PerformWrite(logger, dbManager.GetConnection(), func(tx *gorm.DB) error {
		for i := range batch {
			if err := tx.Create(&batch[i]).Error; err != nil {
				return fmt.Errorf("failed to insert event: %w", err)
			}
			if err := sessions.TouchForEvent(tx, batch[i].SessionID, batch[i].Timestamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Event ingestion failed",
			slog.Int("batch_size", len(batch)),
			slog.Any("error", err))
		return 0, err
	}

	logger.Debug("Ingested events", slog.Int("count", len(batch)))
	return len(batch), nil
}
