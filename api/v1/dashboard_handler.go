package v1

import (
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"clickpulse/internal/analytics"
	"clickpulse/internal/http/middleware"
	"clickpulse/internal/pkg/async"
	"clickpulse/internal/users"

	"log/slog"
)

// FilterEcho mirrors the resolved filter back to the caller so the frontend
// can render the active scope without re-deriving defaults.
type FilterEcho struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Device    string `json:"device,omitempty"`
	Country   string `json:"country,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Search    string `json:"q,omitempty"`
}

// UserWithStats is one row of the dashboard's user table.
type UserWithStats struct {
	users.User
	Stats       analytics.UserStats `json:"stats"`
	CountryName string              `json:"country_name"`
}

// Pagination describes the user page of a composite response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalUsers int64 `json:"total_users"`
}

// DashboardResponse is the composite payload of GET /api/v1/dashboard.
type DashboardResponse struct {
	Filters    FilterEcho              `json:"filters"`
	Metrics    analytics.Metrics       `json:"metrics"`
	Users      []UserWithStats         `json:"users"`
	TrendData  []analytics.TrendPoint  `json:"trend_data"`
	Pagination Pagination              `json:"pagination"`
}

func echoFilter(f analytics.Filter) FilterEcho {
	return FilterEcho{
		Start:     f.Range.From.Format(time.RFC3339),
		End:       f.Range.To.Format(time.RFC3339),
		Device:    f.Device,
		Country:   f.Country,
		EventType: f.EventType,
		Search:    f.Search,
	}
}

// decorateUsers attaches stats and display labels to a user page.
func decorateUsers(list []users.User, stats map[uint]analytics.UserStats) []UserWithStats {
	caser := cases.Title(language.AmericanEnglish)
	countries := gountries.New()

	result := make([]UserWithStats, len(list))
	for i, u := range list {
		countryName := u.Country
		if c, err := countries.FindCountryByAlpha(u.Country); err == nil {
			countryName = c.Name.Common
		}
		u.Device = caser.String(u.Device)
		result[i] = UserWithStats{
			User:        u,
			Stats:       stats[u.ID],
			CountryName: countryName,
		}
	}
	return result
}

// fetchUserPage selects the filter's page of users and computes their stats
// with a single group-by over the filtered events.
func fetchUserPage(db *gorm.DB, f analytics.Filter) ([]UserWithStats, error) {
	page, err := users.FindUsers(db, users.FindQuery{
		Device:  f.Device,
		Country: f.Country,
		Search:  f.Search,
		Offset:  f.Offset(),
		Limit:   f.Limit,
	})
	if err != nil {
		return nil, err
	}

	stats, err := analytics.GetUserStats(db, f, users.UserIDs(page))
	if err != nil {
		return nil, err
	}
	return decorateUsers(page, stats), nil
}

// GetDashboardHandler assembles the dashboard composite: KPI metrics, the
// current page of users with per-user stats, and the daily trend. The three
// sub-queries run concurrently under one bounded deadline; any failure fails
// the whole request.
func GetDashboardHandler(ctx *cartridge.Context) error {
	identity := middleware.IdentityFromLocals(ctx.Ctx)
	filter := analytics.NormalizeFilter(rawFilterFromQuery(ctx), time.Now().UTC())

	ctx.Logger.Info("Dashboard accessed",
		slog.String("user", identity.Email),
		slog.String("from", filter.Range.From.Format(time.RFC3339)),
		slog.String("to", filter.Range.To.Format(time.RFC3339)))

	tctx, cancel := queryContext()
	defer cancel()
	db := ctx.DB().WithContext(tctx)

	tasks := []async.Task{
		{
			Name: "metrics",
			Execute: func() (interface{}, error) {
				return analytics.GetMetrics(db, filter)
			},
		},
		{
			Name: "users",
			Execute: func() (interface{}, error) {
				return fetchUserPage(db, filter)
			},
		},
		{
			Name: "trend",
			Execute: func() (interface{}, error) {
				return analytics.GetTrend(db, filter)
			},
		},
	}

	results, err := runTasks(tctx, tasks)
	if err != nil {
		return handleError(ctx, err)
	}

	metrics := results["metrics"].Data.(analytics.Metrics)
	return ctx.JSON(DashboardResponse{
		Filters:   echoFilter(filter),
		Metrics:   metrics,
		Users:     results["users"].Data.([]UserWithStats),
		TrendData: results["trend"].Data.([]analytics.TrendPoint),
		Pagination: Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalUsers: metrics.TotalUsers,
		},
	})
}
