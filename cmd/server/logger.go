package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
)

// setupAppLogger installs the redacting JSON logger at the configured level.
// Everything logged after this point, including by packages that use the
// default slog logger, goes through it.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Debug("Structured logging initialized", "level", cfg.Server.LogLevel)
	return l, nil
}
