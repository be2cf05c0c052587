// Package internal contains core application functionality
package internal

import (
	"fmt"

	"github.com/karloscodes/cartridge"

	"clickpulse/internal/config"
	"clickpulse/internal/database"
	"clickpulse/internal/pkg/geoip"
)

// Application wraps cartridge.Application with clickpulse-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithRoutes creates a new application with a custom route mounting function
func NewAppWithRoutes(cfg *config.Config, routeMount func(*cartridge.Server)) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Country enrichment on ingestion is optional; the GeoLite2 file may be absent.
	geoip.InitLogger(logger)

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:         cfg,
		Logger:         logger,
		DBManager:      dbManager,
		RouteMountFunc: routeMount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
	}, nil
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	return NewAppWithRoutes(cfg, MountAppRoutes)
}
