package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/config"
)

// handleMigrations handles the execution of database migrations.
// It's called from main() when the -migrate flag is set.
// Returns an error if migrations fail.
func handleMigrations(
	cfg *config.Config,
	migrateCmd string,
	migrationName string,
	verbose bool,
) error {
	slog.Info("Executing migrations",
		"command", migrateCmd,
		"verbose", verbose)

	// For the create command, we need to pass the migration name
	var args []string
	if migrateCmd == "create" {
		if migrationName == "" {
			return fmt.Errorf("migration name is required for 'create' (use -migration-name)")
		}
		args = append(args, migrationName)
	}

	return runMigrations(cfg, migrateCmd, verbose, args...)
}
