package v1

import (
	"time"

	"github.com/karloscodes/cartridge"

	"clickpulse/internal/analytics"
	"clickpulse/internal/pkg/async"
)

// FunnelResponse is the payload of GET /api/v1/funnel.
type FunnelResponse struct {
	Filters  FilterEcho                    `json:"filters"`
	Funnel   []analytics.FunnelStage       `json:"funnel"`
	Timeline []analytics.FunnelTimelineRow `json:"timeline"`
}

// GetFunnelHandler computes the conversion funnel and its daily timeline
// concurrently under one deadline.
func GetFunnelHandler(ctx *cartridge.Context) error {
	filter := analytics.NormalizeFilter(rawFilterFromQuery(ctx), time.Now().UTC())

	tctx, cancel := queryContext()
	defer cancel()
	db := ctx.DB().WithContext(tctx)

	tasks := []async.Task{
		{
			Name: "funnel",
			Execute: func() (interface{}, error) {
				return analytics.GetFunnel(db, filter)
			},
		},
		{
			Name: "timeline",
			Execute: func() (interface{}, error) {
				return analytics.GetFunnelTimeline(db, filter)
			},
		},
	}

	results, err := runTasks(tctx, tasks)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(FunnelResponse{
		Filters:  echoFilter(filter),
		Funnel:   results["funnel"].Data.([]analytics.FunnelStage),
		Timeline: results["timeline"].Data.([]analytics.FunnelTimelineRow),
	})
}
