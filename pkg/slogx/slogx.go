package slogx

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Service string
	Version string
	Env     string // e.g. "dev", "prod"
	Level   string // e.g. "debug", "info", "warn", "error"
	Format  string // "json" or "text"; empty picks by Env
}

// New returns a configured slog.Logger instance. When no format is set
// dev environments get a text handler and everything else gets JSON.
func New(cfg Config) *slog.Logger {
	var handler slog.Handler

	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		AddSource: devEnv(cfg.Env), // Add source info in dev mode
		Level:     level,
	}

	switch resolveFormat(cfg.Format, cfg.Env) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
	)

	slog.SetDefault(logger)
	return logger
}

func resolveFormat(format, env string) string {
	if f := strings.ToLower(format); f != "" {
		return f
	}
	if devEnv(env) {
		return "text"
	}
	return "json"
}

func devEnv(env string) bool {
	return env == "dev" || env == "development"
}

// parseLevel maps a string to slog.Level.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
