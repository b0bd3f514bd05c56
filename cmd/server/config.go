package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/config"
)

// loadAppConfig loads configuration and reports the effective core settings.
// This runs before the structured logger exists, so it logs through the
// default slog handler.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Secrets are reported by presence only; their values never reach logs.
	slog.Debug("Sensitive configuration",
		"database_url_present", cfg.Database.URL != "",
		"jwt_secret_present", cfg.Auth.JWTSecret != "")

	return cfg, nil
}
