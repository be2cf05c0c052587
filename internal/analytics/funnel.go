package analytics

import (
	"fmt"
	"math"

	"gorm.io/gorm"

	"clickpulse/internal/events"
)

// FunnelStageOrder is the fixed progression of the conversion funnel.
// The order is configuration, not inferred from the data.
var FunnelStageOrder = []string{
	events.EventTypeSessionStart,
	events.EventTypePageVisit,
	events.EventTypeProductView,
	events.EventTypeAddToCart,
	events.EventTypeCheckout,
	events.EventTypePurchase,
}

var funnelStageLabels = map[string]string{
	events.EventTypeSessionStart: "Session Start",
	events.EventTypePageVisit:    "Page Visit",
	events.EventTypeProductView:  "Product View",
	events.EventTypeAddToCart:    "Add to Cart",
	events.EventTypeCheckout:     "Checkout",
	events.EventTypePurchase:     "Purchase",
}

// FunnelStage is one step of the funnel output. Count is the number of
// distinct sessions that produced at least one event of the stage's type.
type FunnelStage struct {
	Stage             string  `json:"stage"`
	EventType         string  `json:"event_type"`
	Count             int64   `json:"count"`
	ConversionPercent float64 `json:"conversion_percent"`
}

// FunnelTimelineRow maps event types to distinct-session counts for one day.
// Types with no sessions that day are absent keys, not zeros.
type FunnelTimelineRow struct {
	Date   string           `json:"date"`
	Counts map[string]int64 `json:"counts"`
}

// funnelEventScope applies the funnel's filters: time range plus optional
// device and country, applied directly to events.
func funnelEventScope(db *gorm.DB, f Filter) *gorm.DB {
	scope := db.Model(&events.Event{}).
		Where("timestamp >= ? AND timestamp <= ?", f.Range.From, f.Range.To).
		Where("event_type IN ?", FunnelStageOrder)
	if f.Device != "" {
		scope = scope.Where("device = ?", f.Device)
	}
	if f.Country != "" {
		scope = scope.Where("country = ?", f.Country)
	}
	return scope
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetFunnel computes per-stage distinct-session counts and stage-over-stage
// conversion. Repeated events of one type within a session count once.
// The first stage converts at 100 when populated, 0 otherwise; any stage
// following an empty stage converts at 0 regardless of its own count.
func GetFunnel(db *gorm.DB, f Filter) ([]FunnelStage, error) {
	var rows []struct {
		EventType string
		Count     int64
	}

	err := funnelEventScope(db, f).
		Select("event_type, COUNT(DISTINCT session_id) AS count").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate funnel: %w", err)
	}

	countsByType := make(map[string]int64, len(rows))
	for _, row := range rows {
		countsByType[row.EventType] = row.Count
	}

	stages := make([]FunnelStage, len(FunnelStageOrder))
	for i, eventType := range FunnelStageOrder {
		count := countsByType[eventType]
		stage := FunnelStage{
			Stage:     funnelStageLabels[eventType],
			EventType: eventType,
			Count:     count,
		}

		if i == 0 {
			if count > 0 {
				stage.ConversionPercent = 100
			}
		} else if prev := stages[i-1].Count; prev > 0 {
			stage.ConversionPercent = round2(float64(count) / float64(prev) * 100)
		}

		stages[i] = stage
	}
	return stages, nil
}

// GetFunnelTimeline buckets the per-stage distinct-session counts by
// calendar day. Only days with at least one funnel event appear, ascending.
func GetFunnelTimeline(db *gorm.DB, f Filter) ([]FunnelTimelineRow, error) {
	var rows []struct {
		Date      string
		EventType string
		Count     int64
	}

	err := funnelEventScope(db, f).
		Select("strftime('%Y-%m-%d', timestamp) AS date, event_type, COUNT(DISTINCT session_id) AS count").
		Group("strftime('%Y-%m-%d', timestamp), event_type").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate funnel timeline: %w", err)
	}

	var timeline []FunnelTimelineRow
	byDate := make(map[string]int)
	for _, row := range rows {
		idx, exists := byDate[row.Date]
		if !exists {
			timeline = append(timeline, FunnelTimelineRow{
				Date:   row.Date,
				Counts: make(map[string]int64),
			})
			idx = len(timeline) - 1
			byDate[row.Date] = idx
		}
		timeline[idx].Counts[row.EventType] = row.Count
	}

	if timeline == nil {
		timeline = []FunnelTimelineRow{}
	}
	return timeline, nil
}
