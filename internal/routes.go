package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "clickpulse/api/v1"
	"clickpulse/internal/config"
	"clickpulse/internal/http/middleware"
)

// apiCORSConfig is the permissive CORS setup shared by the API routes; the
// dashboard SPA is served from another origin.
var apiCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()
	logger := srv.GetLogger()

	// Rate limiting would interfere with local development and tests,
	// so it only applies in production.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Request budget for the read API per IP per minute.
	apiRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(cfg.RateLimitPerMinute),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Stricter budget for ingestion, which is the write-heavy path.
	ingestRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(cfg.IngestLimitPerMinute),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	requireAuth := middleware.RequireAuth(cfg.GetSessionSecret(), logger)

	apiConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		CustomMiddleware:   []fiber.Handler{apiRateLimiter, requireAuth},
		EnableSecFetchSite: cartridge.Bool(false),
	}

	ingestConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		CustomMiddleware:   []fiber.Handler{ingestRateLimiter, requireAuth},
		EnableSecFetchSite: cartridge.Bool(false),
	}

	healthConfig := &cartridge.RouteConfig{
		EnableCORS:         true,
		CORSConfig:         apiCORSConfig,
		EnableSecFetchSite: cartridge.Bool(false),
	}

	// === HEALTH (no auth) ===
	srv.Get("/api/v1/health", v1.HealthHandler, healthConfig)
	srv.Head("/api/v1/health", v1.HealthHandler, healthConfig)

	// === EVENT INGESTION AND LISTING ===
	srv.Post("/api/v1/events", v1.CreateEventsHandler, ingestConfig)
	srv.Options("/api/v1/events", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, healthConfig)
	srv.Get("/api/v1/events", v1.ListEventsHandler, apiConfig)

	// === AGGREGATION ENDPOINTS ===
	srv.Get("/api/v1/dashboard", v1.GetDashboardHandler, apiConfig)
	srv.Get("/api/v1/funnel", v1.GetFunnelHandler, apiConfig)
	srv.Get("/api/v1/user/:id/journey", v1.GetUserJourneyHandler, apiConfig)
	srv.Get("/api/v1/users", v1.ListUsersHandler, apiConfig)
}
