package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/pressly/goose/v3"
)

// runMigrations opens a connection to the configured database and executes
// one goose command against it. Every log line carries a correlation ID so a
// whole migration run can be traced through mixed output.
func runMigrations(cfg *config.Config, command string, verbose bool, args ...string) error {
	log := slog.Default().With(
		"correlation_id", uuid.New().String(),
		"component", "migrations",
		"command", command,
	)

	startTime := time.Now()
	log.Info("Starting migration operation",
		"operation", fmt.Sprintf("goose %s", command),
		"verbose", verbose)

	goose.SetLogger(&slogGooseLogger{})

	dbURL := cfg.Database.URL
	if dbURL == "" {
		log.Error("Database URL is empty",
			"resolution", "check MNEMO_DATABASE_URL or the config file")
		return fmt.Errorf("database URL is empty: check your configuration")
	}
	log.Info("Using database URL", "url", maskDatabaseURL(dbURL))

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Error("Failed to open database connection", "error", err)
		return fmt.Errorf(
			"failed to open database connection: %w (check connection string format and credentials)",
			err,
		)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing database connection", "error", closeErr)
		}
		log.Info("Migration operation completed",
			"operation", fmt.Sprintf("goose %s", command),
			"duration_ms", time.Since(startTime).Milliseconds())
	}()

	// Migrations don't need much of a pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Minute * 5)

	if err := pingForMigrations(db); err != nil {
		log.Error("Database ping failed", "error", err)
		return err
	}
	log.Debug("Database connection verified")

	migrationsDirPath, err := FindMigrationsDir()
	if err != nil {
		log.Error("Failed to locate migrations directory", "error", err)
		return fmt.Errorf("failed to locate migrations directory: %w", err)
	}
	log.Info("Using migrations directory", "path", migrationsDirPath)

	logMigrationFiles(log, migrationsDirPath, verbose)

	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("Failed to set dialect", "error", err)
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetTableName(MigrationTableName)

	currentVersion := queryMigrationVersion(db, log)
	log.Info("Current database migration version", "version", currentVersion)

	commandStartTime := time.Now()
	err = execGooseCommand(db, migrationsDirPath, command, args, log)
	commandDuration := time.Since(commandStartTime)

	if err != nil {
		log.Error("Migration command failed",
			"command", command,
			"error", err,
			"duration_ms", commandDuration.Milliseconds())
		return err
	}
	log.Info("Migration command executed successfully",
		"command", command,
		"duration_ms", commandDuration.Milliseconds())

	// Commands that move the schema get their version change reported.
	if command == "up" || command == "down" || command == "reset" {
		newVersion := queryMigrationVersion(db, log)
		if newVersion != currentVersion {
			log.Info("Database schema version changed",
				"previous_version", currentVersion,
				"new_version", newVersion)
		} else {
			log.Info("Database schema version unchanged", "version", newVersion)
		}
	}

	if command == "up" && verbose {
		if verifyErr := verifyAppliedMigrations(db, migrationsDirPath, log); verifyErr != nil {
			log.Error("Migration verification failed", "error", verifyErr)
			return fmt.Errorf("migration verification failed: %w", verifyErr)
		}
	}

	return nil
}

// pingForMigrations verifies connectivity and classifies the failure so the
// operator gets a hint about what to check.
func pingForMigrations(db *sql.DB) error {
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(pingCtx)
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf(
			"database ping timed out after 5s: %w (check network connectivity and server load)",
			err,
		)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf(
			"network error connecting to database: %w (check hostname, port, and network connectivity)",
			err,
		)
	}
	return fmt.Errorf(
		"failed to connect to database: %w (check connection string, credentials, and database availability)",
		err,
	)
}

// logMigrationFiles lists the migration files found on disk. Read failures
// only warn; goose will surface its own error if the directory is unusable.
func logMigrationFiles(log *slog.Logger, dir string, verbose bool) {
	migFiles, err := enumerateMigrationFiles(dir)
	if err != nil {
		log.Warn("Failed to read migrations directory", "error", err)
		return
	}
	log.Info("Found migration files",
		"count", len(migFiles.Files),
		"sql_count", migFiles.SQLCount,
		"newest_file", migFiles.NewestFile,
		"oldest_file", migFiles.OldestFile)
	if verbose {
		log.Info("Migration files list", "files", migFiles.Files)
	}
}

// execGooseCommand dispatches a single goose command.
func execGooseCommand(db *sql.DB, dir, command string, args []string, log *slog.Logger) error {
	var err error
	switch command {
	case "up":
		log.Info("Applying pending migrations")
		err = goose.Up(db, dir)
	case "down":
		log.Info("Rolling back one migration version")
		err = goose.Down(db, dir)
	case "reset":
		log.Info("Resetting all migrations (roll back to zero)")
		err = goose.Reset(db, dir)
	case "status":
		log.Info("Checking migration status")
		err = goose.Status(db, dir)
	case "version":
		log.Info("Retrieving current migration version")
		err = goose.Version(db, dir)
	case "create":
		if len(args) == 0 || args[0] == "" {
			return fmt.Errorf("migration name is required for 'create' command")
		}
		log.Info("Creating new migration", "name", args[0], "type", "sql", "directory", dir)
		err = goose.Create(db, dir, args[0], "sql")
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, version, or create)",
			command,
		)
	}

	if err != nil {
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}
	return nil
}

// queryMigrationVersion reads the latest applied version from the goose
// tracking table. A clean database reports version "0".
func queryMigrationVersion(db *sql.DB, logger *slog.Logger) string {
	var version string
	err := db.QueryRow(
		fmt.Sprintf("SELECT version_id FROM %s ORDER BY version_id DESC LIMIT 1", MigrationTableName),
	).Scan(&version)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warn("Failed to retrieve current migration version", "error", err)
		}
		return "0"
	}
	return version
}
