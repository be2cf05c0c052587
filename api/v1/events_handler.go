package v1

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"clickpulse/internal/analytics"
	"clickpulse/internal/events"
	"clickpulse/internal/timeframe"

	"log/slog"
)

// parseEventBatch accepts either a single event object or an array of
// events, matching what tracking clients send.
func parseEventBatch(body []byte) ([]events.Event, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []events.Event
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}

	var single events.Event
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []events.Event{single}, nil
}

// CreateEventsHandler ingests one event or a batch. The write is
// all-or-nothing; a single invalid event rejects the request. Submissions
// are append-only and not deduplicated.
func CreateEventsHandler(ctx *cartridge.Context) error {
	batch, err := parseEventBatch(ctx.Ctx.Body())
	if err != nil {
		ctx.Logger.Debug("Failed to parse event payload", slog.Any("error", err))
		return badRequest(ctx, "invalid event payload")
	}
	if len(batch) == 0 {
		return badRequest(ctx, "empty event payload")
	}

	created, err := events.CreateEvents(ctx.DBManager, ctx.Logger, batch, getClientIP(ctx.Ctx))
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.Status(http.StatusAccepted).JSON(fiber.Map{
		"created_count": created,
	})
}

// EventListResponse is the payload of GET /api/v1/events.
type EventListResponse struct {
	Items []events.Event `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ListEventsHandler returns a raw event page, newest first. Date bounds are
// applied only when present and parseable; there is no default window on
// the raw listing.
func ListEventsHandler(ctx *cartridge.Context) error {
	page := queryInt(ctx, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(ctx, "limit", analytics.DefaultEventLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > analytics.MaxLimit {
		limit = analytics.MaxLimit
	}

	filters := events.EventFilters{
		UserID:    uint(queryInt(ctx, "userId", 0)),
		SessionID: uint(queryInt(ctx, "sessionId", 0)),
		EventType: ctx.Query("eventType"),
		Device:    ctx.Query("device"),
		Country:   ctx.Query("country"),
		Offset:    (page - 1) * limit,
		Limit:     limit,
	}
	if from, ok := timeframe.ParseDate(ctx.Query("startDate")); ok {
		filters.From = from
	}
	if to, ok := timeframe.ParseDate(ctx.Query("endDate")); ok {
		filters.To = to
	}

	tctx, cancel := queryContext()
	defer cancel()

	items, total, err := events.GetFilteredEvents(ctx.DB().WithContext(tctx), filters)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(EventListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
