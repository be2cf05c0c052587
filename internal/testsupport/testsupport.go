package testsupport

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clickpulse/internal"
	"clickpulse/internal/config"
	"clickpulse/internal/events"
	"clickpulse/internal/http/middleware"
	"clickpulse/internal/sessions"
	"clickpulse/internal/users"
	"github.com/karloscodes/cartridge/cache"
)

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with clickpulse's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all clickpulse models for migration
func allModels() []any {
	return []any{
		&cache.CacheRecord{},
		&users.User{},
		&sessions.Session{},
		&events.Event{},
	}
}

// SetupTestDB creates a test database with all clickpulse models migrated.
// Uses a named in-memory database with cache=shared to allow multiple
// connections to share the same database within a test. Caches the database
// by test name so multiple calls within the same test return the same one.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set CLICKPULSE_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	logger := GetLogger()
	dbManager := NewTestDBManager(db)

	return dbManager, logger
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateTestUser creates a user with a properly hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, name, email, device, country string) users.User {
	t.Helper()

	var user users.User
	if db.Where("email = ?", email).First(&user).Error == nil {
		return user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user = users.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Device:       device,
		Country:      country,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateTestSession creates a session for the given user
func CreateTestSession(t *testing.T, db *gorm.DB, userID uint, persona string, startedAt time.Time) sessions.Session {
	t.Helper()

	session := sessions.Session{
		UserID:    userID,
		Persona:   persona,
		StartedAt: startedAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&session).Error)
	return session
}

// CreateTestEvent inserts an event directly, bypassing the ingestion path
func CreateTestEvent(t *testing.T, db *gorm.DB, e events.Event) events.Event {
	t.Helper()

	e.Timestamp = e.Timestamp.UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

// MakeTestToken signs a bearer token accepted by the auth middleware
func MakeTestToken(t *testing.T, userID uint, email string) string {
	t.Helper()

	claims := middleware.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.GetConfig().GetSessionSecret()))
	require.NoError(t, err)
	return signed
}

// CreateTestApp creates a test Fiber app with all API routes mounted
func CreateTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()

	dbManager := NewTestDBManager(db)
	appConfig := config.GetConfig()
	appConfig.Environment = config.Test

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = dbManager

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	internal.MountAppRoutes(srv)
	return srv.App()
}
