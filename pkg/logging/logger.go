// Package logging provides structured logging for the spaceflight simulator.
// It wraps Go's standard slog package so every log line carries the flight
// ID of the run that produced it, with sensitive attributes masked.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// LevelEnvVar is the environment variable consulted for the log level
const LevelEnvVar = "SPACEFLIGHT_LOG_LEVEL"

// Logger wraps slog.Logger with context-aware helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stdout. The level comes from
// SPACEFLIGHT_LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and defaults to INFO.
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout, getLogLevelFromEnv())
}

// NewLoggerWithWriter creates a JSON logger writing to w at the given level.
// The terminal renderer owns stdout, so it diverts logs through this.
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: sanitizeAttributes,
	})
	return &Logger{slog.New(handler)}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return NewLoggerWithWriter(io.Discard, slog.LevelError+1)
}

// LogWithContext logs a message, attaching the flight ID from ctx if present
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if flightID := GetFlightID(ctx); flightID != "" {
		args = append(args, "flight_id", flightID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context and proper error formatting.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

type flightIDKey struct{}

// WithFlightID adds a flight ID to the context, generating one if empty
func WithFlightID(ctx context.Context, flightID string) context.Context {
	if flightID == "" {
		flightID = GenerateFlightID()
	}
	return context.WithValue(ctx, flightIDKey{}, flightID)
}

// GetFlightID extracts the flight ID from the context, or "" if absent
func GetFlightID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(flightIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateFlightID creates a new random 16 hex character ID
func GenerateFlightID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// ParseLevel maps a level name to a slog level, defaulting to INFO
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getLogLevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(LevelEnvVar))
}

// redactedKeys are substrings of attribute keys whose values are masked.
// The recorder DSN may embed a password.
var redactedKeys = []string{
	"password", "passwd", "pwd",
	"token", "auth", "secret", "private",
	"dsn", "cookie", "session",
}

// sanitizeAttributes masks values whose keys look like credentials
func sanitizeAttributes(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	if slices.ContainsFunc(redactedKeys, func(k string) bool { return strings.Contains(key, k) }) {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}

// WrapError wraps an error with additional context information.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
