package v1

import (
	"time"

	"github.com/karloscodes/cartridge"

	"clickpulse/internal/analytics"
)

// GetUserJourneyHandler answers GET /api/v1/user/:id/journey. A malformed
// id is a 400; an id that matches no stored user is a 404, never an empty
// success payload.
func GetUserJourneyHandler(ctx *cartridge.Context) error {
	userID, err := ctx.ParamsInt("id")
	if err != nil || userID <= 0 {
		return badRequest(ctx, "invalid user id")
	}

	filter := analytics.NormalizeFilter(rawFilterFromQuery(ctx), time.Now().UTC())

	tctx, cancel := queryContext()
	defer cancel()
	db := ctx.DB().WithContext(tctx)

	journey, err := analytics.GetUserJourney(db, filter, uint(userID))
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(journey)
}
