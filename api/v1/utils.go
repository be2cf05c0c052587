package v1

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"clickpulse/internal/analytics"
	"clickpulse/internal/config"
	"clickpulse/internal/pkg/async"
)

// rawFilterFromQuery reads the shared filter parameters. Dashboard and
// funnel use start/end; the events listing accepts startDate/endDate too.
// The event-type restriction answers to both "event" and "eventType".
func rawFilterFromQuery(ctx *cartridge.Context) analytics.RawFilter {
	from := ctx.Query("start")
	if from == "" {
		from = ctx.Query("startDate")
	}
	to := ctx.Query("end")
	if to == "" {
		to = ctx.Query("endDate")
	}
	eventType := ctx.Query("event")
	if eventType == "" {
		eventType = ctx.Query("eventType")
	}

	return analytics.RawFilter{
		From:      from,
		To:        to,
		Device:    ctx.Query("device"),
		Country:   ctx.Query("country"),
		EventType: eventType,
		Search:    ctx.Query("q"),
		Page:      queryInt(ctx, "page", 0),
		Limit:     queryInt(ctx, "limit", 0),
	}
}

func queryInt(ctx *cartridge.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// queryContext bounds one top-level aggregation request. All sub-queries
// of the request share this single deadline.
func queryContext() (context.Context, context.CancelFunc) {
	timeout := time.Duration(config.GetConfig().QueryTimeoutSeconds) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}

// runTasks fans the sub-queries out over the pool and fails the whole
// request if any sub-query errs or the deadline expires before every result
// arrives. Partial results are never returned to a caller.
func runTasks(ctx context.Context, tasks []async.Task) (map[string]async.Result, error) {
	pool := async.NewPool(len(tasks))
	results := pool.Execute(ctx, tasks)

	if len(results) < len(tasks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("aggregation finished with %d of %d results", len(results), len(tasks))
	}
	for name, result := range results {
		if result.Err != nil {
			return nil, fmt.Errorf("error fetching %s: %w", name, result.Err)
		}
	}
	return results, nil
}

// getClientIP resolves the originating address, preferring proxy headers.
func getClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	for _, header := range []string{"X-Real-IP", "CF-Connecting-IP", "True-Client-IP"} {
		if value := strings.TrimSpace(c.Get(header)); value != "" {
			if net.ParseIP(value) != nil {
				return value
			}
		}
	}
	return c.IP()
}
