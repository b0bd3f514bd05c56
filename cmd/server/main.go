// Package main implements the entry point for the Mnemo API server,
// which manages deck/topic flashcard hierarchies, schedules topic reviews
// with a spaced repetition heuristic, and generates cards through LLM
// providers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

// run parses flags and dispatches to either the migration runner or the
// server itself. Separated from main so it can return errors instead of
// exiting directly.
func run() error {
	migrateCmd := flag.String(
		"migrate",
		"",
		"Run a migration command (up, down, reset, status, version, create) and exit",
	)
	migrationName := flag.String(
		"migration-name",
		"",
		"Name for the new migration (used with -migrate create)",
	)
	verbose := flag.Bool("verbose", false, "Enable verbose migration logging")
	flag.Parse()

	cfg, err := loadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	// Migration commands run and exit without starting the server
	if *migrateCmd != "" {
		if err := handleMigrations(cfg, *migrateCmd, *migrationName, *verbose); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	}

	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		// newApplication may fail before the task runner exists; the
		// connection is the only resource to release here
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Error closing database connection", "error", closeErr)
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
