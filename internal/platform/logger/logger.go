package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/mnemo-api/internal/config"
)

// Setup builds the application logger and installs it as the slog default.
// Records are serialized as JSON on stdout, and every record first passes
// through a redacting handler so credentials, connection strings, and
// provider API keys never reach the log stream verbatim.
//
// An unrecognized level falls back to info with a warning on stderr rather
// than failing startup.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	level, ok := parseLevel(cfg.LogLevel)
	if !ok {
		level = slog.LevelInfo

		// The structured logger does not exist yet, so the warning goes
		// through a plain text handler on stderr.
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := NewRedactingHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	logger := slog.New(handler)

	// Installing the default lets package-level slog calls made before
	// dependency wiring completes land in the same stream.
	slog.SetDefault(logger)

	return logger, nil
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
