package geoip

import (
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"clickpulse/internal/config"
)

var (
	geoDB  *geoip2.Reader
	once   sync.Once
	logger *slog.Logger
)

// InitLogger sets the logger for the geoip package.
func InitLogger(l *slog.Logger) {
	logger = l
}

// InitGeoDB opens the GeoLite2 country database.
// Returns nil if the database is not configured or not found (GeoIP is optional).
func InitGeoDB() *geoip2.Reader {
	cfg := config.GetConfig()
	if cfg.GeoDBPath == "" {
		if logger != nil {
			logger.Debug("GeoIP database path not configured - country enrichment disabled")
		}
		return nil
	}

	if _, err := os.Stat(cfg.GeoDBPath); os.IsNotExist(err) {
		if logger != nil {
			logger.Info("GeoLite2 database not found - country enrichment disabled",
				slog.String("path", cfg.GeoDBPath),
				slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		}
		return nil
	} else if err != nil {
		if logger != nil {
			logger.Warn("Error checking GeoLite2 database file",
				slog.String("path", cfg.GeoDBPath),
				slog.Any("error", err))
		}
		return nil
	}

	db, err := geoip2.Open(cfg.GeoDBPath)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open GeoLite2 database",
				slog.String("path", cfg.GeoDBPath),
				slog.Any("error", err))
		}
		return nil
	}

	if logger != nil {
		logger.Info("GeoLite2 database initialized",
			slog.String("path", cfg.GeoDBPath))
	}
	return db
}

// GetGeoDB returns the GeoLite2 database reader, initializing it if necessary.
func GetGeoDB() *geoip2.Reader {
	once.Do(func() {
		geoDB = InitGeoDB()
	})
	return geoDB
}

// CountryForIP resolves an IP address string to an ISO alpha-2 country code.
// Returns "" when GeoIP is disabled or the address cannot be resolved.
func CountryForIP(ipAddress string) string {
	db := GetGeoDB()
	if db == nil {
		return ""
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return ""
	}

	record, err := db.Country(ip)
	if err != nil {
		if logger != nil {
			logger.Debug("GeoIP lookup failed",
				slog.String("ip", ipAddress),
				slog.Any("error", err))
		}
		return ""
	}
	return record.Country.IsoCode
}
