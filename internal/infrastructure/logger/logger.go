package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/janhq/surprise-api/internal/config"
)

// New creates a zerolog.Logger configured for the surprise service.
// Production runs emit JSON; everything else uses the console writer
// unless SURPRISE_LOG_FORMAT overrides it.
func New(cfg *config.Config) zerolog.Logger {
	level := parseLevel(cfg.LogLevel)
	base := log.Output(output(cfg)).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger().
		Level(level)
	return base
}

func output(cfg *config.Config) io.Writer {
	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if format == "json" || (format == "" && cfg.IsProduction()) {
		return os.Stdout
	}
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
