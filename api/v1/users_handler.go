package v1

import (
	"time"

	"github.com/karloscodes/cartridge"

	"clickpulse/internal/analytics"
	"clickpulse/internal/pkg/async"
	"clickpulse/internal/users"
)

// UserListResponse is the payload of GET /api/v1/users.
type UserListResponse struct {
	Data  []UserWithStats `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ListUsersHandler returns a page of users with their stats for the
// filtered window.
func ListUsersHandler(ctx *cartridge.Context) error {
	filter := analytics.NormalizeFilter(rawFilterFromQuery(ctx), time.Now().UTC())

	tctx, cancel := queryContext()
	defer cancel()
	db := ctx.DB().WithContext(tctx)

	tasks := []async.Task{
		{
			Name: "users",
			Execute: func() (interface{}, error) {
				return fetchUserPage(db, filter)
			},
		},
		{
			Name: "total",
			Execute: func() (interface{}, error) {
				return users.CountUsers(db, users.FindQuery{
					Device:  filter.Device,
					Country: filter.Country,
					Search:  filter.Search,
				})
			},
		},
	}

	results, err := runTasks(tctx, tasks)
	if err != nil {
		return handleError(ctx, err)
	}

	return ctx.JSON(UserListResponse{
		Data:  results["users"].Data.([]UserWithStats),
		Total: results["total"].Data.(int64),
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}
