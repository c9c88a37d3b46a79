package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/w93163red/LivCap-Translate/pkg/config"
)

// Config describes the root logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is the output format ("json" or "text").
	Format string

	// File is the log file to write to, rotated by size. Empty writes
	// to stderr.
	File string

	// MaxSizeMB is the size in megabytes at which the log file rotates.
	MaxSizeMB int

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int

	// MaxAgeDays is the age in days past which rotated files are deleted.
	MaxAgeDays int

	// Writer overrides File and stderr when set. Intended for tests.
	Writer io.Writer
}

// FromConfig maps the telemetry logging section onto a logger Config.
func FromConfig(c config.LoggingConfig) Config {
	return Config{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
	}
}

// New builds the root structured logger. Components derive their own
// loggers from it with With("component", ...).
//
// The returned close function flushes and closes the rotating file writer.
// It is a no-op when logging goes to stderr or a caller-supplied writer.
func New(cfg Config) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	format := strings.ToLower(cfg.Format)
	switch format {
	case "", "json", "text":
	default:
		return nil, nil, fmt.Errorf("unrecognized log format %q, want json or text", cfg.Format)
	}

	writer, closeFn := newWriter(cfg)
	opts := &slog.HandlerOptions{Level: level}

	if format == "text" {
		return slog.New(slog.NewTextHandler(writer, opts)), closeFn, nil
	}
	return slog.New(slog.NewJSONHandler(writer, opts)), closeFn, nil
}

// newWriter picks the log destination. A configured file goes through a
// size-rotated writer; everything else is written directly.
func newWriter(cfg Config) (io.Writer, func() error) {
	if cfg.Writer != nil {
		return cfg.Writer, func() error { return nil }
	}
	if cfg.File == "" {
		return os.Stderr, func() error { return nil }
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	return rotator, rotator.Close
}

// parseLevel maps a config string onto a slog level. The empty string
// selects info so an unconfigured gateway logs at the usual level.
func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unrecognized log level %q, want debug, info, warn or error", s)
}
