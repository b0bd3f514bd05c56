package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// MigrationTableName is the name of the table used by goose to track migrations.
const MigrationTableName = "schema_migrations"

// slogGooseLogger adapts the goose logger interface to use slog
type slogGooseLogger struct{}

// Printf implements the goose.Logger Printf method by forwarding messages to slog.Info
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

// Fatalf implements the goose.Logger Fatalf method by forwarding error messages to slog.Error.
// Unlike the standard Fatalf behavior, this does NOT call os.Exit: the error
// propagates back to main, which handles the exit consistently.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}

	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		parsedURL.User = url.UserPassword(username, "****")
		return parsedURL.String()
	}

	return dbURL
}

// FindMigrationsDir attempts to locate the migrations directory relative to the project root.
func FindMigrationsDir() (string, error) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		return "", fmt.Errorf("failed to find project root: %w", err)
	}

	migrationsPath := filepath.Join(projectRoot, "internal", "platform", "postgres", "migrations")

	// Verify the migrations directory exists
	if !directoryExists(migrationsPath) {
		return "", fmt.Errorf("migrations directory not found at %s", migrationsPath)
	}

	return migrationsPath, nil
}

// FindProjectRoot locates the project root directory by walking up from the
// working directory until it finds go.mod.
func FindProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	dir := currentDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("project root not found (no go.mod found in directory tree)")
}

// directoryExists checks if a directory exists at the given path
func directoryExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// MigrationFilesData holds information about migration files in a directory
type MigrationFilesData struct {
	Files         []string
	SQLCount      int
	NewestFile    string
	OldestFile    string
	LatestVersion string // The version number of the latest migration
}

// enumerateMigrationFiles lists and categorizes migration files in a directory
func enumerateMigrationFiles(dirPath string) (MigrationFilesData, error) {
	result := MigrationFilesData{}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return result, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		result.Files = append(result.Files, name)

		if filepath.Ext(name) != ".sql" {
			continue
		}
		result.SQLCount++

		// Migrations sort lexically because goose names them with a
		// zero-padded version prefix
		if result.OldestFile == "" || name < result.OldestFile {
			result.OldestFile = name
		}
		if result.NewestFile == "" || name > result.NewestFile {
			result.NewestFile = name
		}

		// Extract the version number from the NNNNN_description.sql pattern
		parts := strings.SplitN(name, "_", 2)
		if len(parts) > 0 {
			version := parts[0]
			if _, err := strconv.ParseInt(version, 10, 64); err == nil {
				if result.LatestVersion == "" || version > result.LatestVersion {
					result.LatestVersion = version
				}
			}
		}
	}

	// Sort files by name for consistent output
	sort.Strings(result.Files)

	return result, nil
}

// verifyAppliedMigrations checks that every migration file on disk has been
// applied and that none are recorded as failed.
func verifyAppliedMigrations(db *sql.DB, migrationsDirPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var migrationCount int
	countErr := db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE version_id <> 0", MigrationTableName),
	).Scan(&migrationCount)
	if countErr != nil {
		return fmt.Errorf("failed to verify migration count: %w", countErr)
	}

	migFilesData, err := enumerateMigrationFiles(migrationsDirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	if migrationCount < migFilesData.SQLCount {
		return fmt.Errorf("not all migrations have been applied: found %d applied but expected %d",
			migrationCount, migFilesData.SQLCount)
	}

	rows, queryErr := db.Query(
		fmt.Sprintf("SELECT version_id, is_applied FROM %s ORDER BY version_id", MigrationTableName),
	)
	if queryErr != nil {
		return fmt.Errorf("failed to query migration history: %w", queryErr)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn("Failed to close rows", "error", err)
		}
	}()

	applied := make([]string, 0, migrationCount)
	failed := make([]string, 0)

	for rows.Next() {
		var versionID string
		var isApplied bool
		if err := rows.Scan(&versionID, &isApplied); err != nil {
			logger.Warn("Failed to scan migration row", "error", err)
			continue
		}

		if isApplied {
			applied = append(applied, versionID)
		} else {
			failed = append(failed, versionID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error while iterating migration rows: %w", err)
	}

	if len(failed) > 0 {
		return fmt.Errorf("some migrations failed to apply: %v", failed)
	}

	logger.Info("Migration verification completed",
		"migrations_applied", len(applied))
	return nil
}
