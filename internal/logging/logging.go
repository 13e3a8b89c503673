// Package logging provides structured logging using Go's slog package.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// RunIDKey is the context key for the current run ID.
	RunIDKey ContextKey = "run_id"
)

var (
	// defaultLogger is the global logger instance.
	defaultLogger *slog.Logger
)

func init() {
	// Warnings and above, text on stderr, until the command configures otherwise.
	InitLogger(LevelWarn, FormatText)
}

// Level represents a log level.
type Level int

const (
	// LevelDebug is for debug messages.
	LevelDebug Level = iota
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelWarn is for warning messages.
	LevelWarn
	// LevelError is for error messages.
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// ParseLevel maps a flag value ("debug", "info", "warn", "error") to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat maps a flag value ("json", "text") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// InitLogger initializes the global logger on stderr with the specified level and format.
func InitLogger(level Level, format Format) {
	InitLoggerTo(os.Stderr, level, format)
}

// InitLoggerTo initializes the global logger writing to w.
func InitLoggerTo(w io.Writer, level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize timestamp format
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// LoggerFromContext returns a logger with context values attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := defaultLogger
	if runID := GetRunID(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	return logger
}

// RunStarted logs the start of a rewrite run.
func RunStarted(ctx context.Context, input, output string, args ...any) {
	allArgs := []any{
		"input", input,
		"output", output,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("run_started", allArgs...)
}

// RunFinished logs the end of a rewrite run.
func RunFinished(ctx context.Context, replaced int, duration time.Duration, args ...any) {
	allArgs := []any{
		"replaced", replaced,
		"duration_ms", duration.Milliseconds(),
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("run_finished", allArgs...)
}

// SlotSkipped logs an encounter key that looks like a slot but is not rewritten.
func SlotSkipped(key, suggestion string, args ...any) {
	allArgs := []any{
		"key", key,
	}
	if suggestion != "" {
		allArgs = append(allArgs, "did_you_mean", suggestion)
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Warn("slot_skipped", allArgs...)
}

// LevelDefaulted logs an entry whose level field was missing or not a number.
func LevelDefaulted(field, species string, def int, args ...any) {
	allArgs := []any{
		"field", field,
		"species", species,
		"default", def,
	}
	allArgs = append(allArgs, args...)
	defaultLogger.Debug("level_defaulted", allArgs...)
}

// LedgerRecorded logs a run written to the SQLite ledger.
func LedgerRecorded(ctx context.Context, path string, rows int, args ...any) {
	allArgs := []any{
		"ledger", path,
		"usage_rows", rows,
	}
	allArgs = append(allArgs, args...)
	LoggerFromContext(ctx).Info("ledger_recorded", allArgs...)
}
