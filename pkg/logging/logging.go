// Package logging configures log/slog for the mynt2koinly commands and
// hands out loggers to library code.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level slog.Level
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
	// Output defaults to os.Stderr. Stdout is kept free for ledger output.
	Output io.Writer
}

// DefaultConfig reads LOG_LEVEL (DEBUG, INFO, WARN, ERROR; default INFO)
// and LOG_FORMAT (text or json; default text) from the environment.
func DefaultConfig() Config {
	return ConfigFor(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// ConfigFor builds a Config from a level name and a format name. The
// "json" format starts from ProductionConfig; anything else logs text.
func ConfigFor(level, format string) Config {
	cfg := Config{Output: os.Stderr}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		cfg = ProductionConfig()
	}
	cfg.Level = ParseLevel(level)
	return cfg
}

// ProductionConfig returns JSON output at INFO.
func ProductionConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		JSON:   true,
		Output: os.Stderr,
	}
}

// ParseLevel converts a level name to slog.Level. Unknown or empty names
// yield INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger from cfg without touching the slog default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Setup builds a logger from cfg and installs it as the slog default.
func Setup(cfg Config) *slog.Logger {
	logger := New(cfg)
	slog.SetDefault(logger)
	return logger
}

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns logger, or Nop when logger is nil.
func OrNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
