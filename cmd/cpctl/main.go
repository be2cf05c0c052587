// main.go - Admin control tool for clickpulse
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"log/slog"

	"clickpulse/internal"
	"clickpulse/internal/events"
	"clickpulse/internal/seeder"
	"clickpulse/internal/sessions"
	"clickpulse/internal/users"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&MigrateCommand{},
	&SeedCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: Cleanup error: %v", err)
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}

	log.Printf("Command %s completed successfully", cmd.Name())
}

func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", nil
	}
	return args[0], args[1:]
}

func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func showUsageAndExit() {
	fmt.Println("Usage: cpctl <command> [args]")
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-12s %s\n", cmd.Name(), cmd.Description())
	}
	os.Exit(1)
}

// MigrateCommand runs the database migrations
type MigrateCommand struct{}

// Name returns the command name
func (c *MigrateCommand) Name() string {
	return "migrate"
}

// Description returns the command description
func (c *MigrateCommand) Description() string {
	return "Runs database migrations"
}

// Execute implements the migrate command
func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	log.Println("Running database migrations...")
	return app.DBManager.MigrateDatabase()
}

// SeedCommand populates the database with synthetic analytics data
type SeedCommand struct{}

// Name returns the command name
func (c *SeedCommand) Name() string {
	return "seed"
}

// Description returns the command description
func (c *SeedCommand) Description() string {
	return "Seeds synthetic users, sessions, and events (optional arg: user count, default 100)"
}

// Execute implements the seed command
func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	userCount := 100
	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid user count: %s", args[0])
		}
		userCount = n
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("failed to migrate before seeding: %w", err)
	}

	s := seeder.NewSeeder(app.DBManager, slog.Default(), userCount)
	return s.Run(ctx)
}

// StatusCommand prints row counts for the main tables
type StatusCommand struct{}

// Name returns the command name
func (c *StatusCommand) Name() string {
	return "status"
}

// Description returns the command description
func (c *StatusCommand) Description() string {
	return "Prints database row counts"
}

// Execute implements the status command
func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()

	var userCount, sessionCount, eventCount int64
	if err := db.Model(&users.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Model(&sessions.Session{}).Count(&sessionCount).Error; err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := db.Model(&events.Event{}).Count(&eventCount).Error; err != nil {
		return fmt.Errorf("failed to count events: %w", err)
	}

	fmt.Printf("users:    %d\n", userCount)
	fmt.Printf("sessions: %d\n", sessionCount)
	fmt.Printf("events:   %d\n", eventCount)
	return nil
}

// HelpCommand shows usage information
type HelpCommand struct{}

// Name returns the command name
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns the command description
func (c *HelpCommand) Description() string {
	return "Shows this help"
}

// Execute implements the help command
func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fmt.Println("Usage: cpctl <command> [args]")
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-12s %s\n", cmd.Name(), cmd.Description())
	}
	return nil
}
