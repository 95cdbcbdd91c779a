// Package logger configures the application slog logger and carries a request scoped logger in the request context.
//
// In dev and test environments logs are written with the tint handler (coloured, human readable).
// In staging and prod logs are written as JSON.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LevelNone disables logging when used as the handler level.
const LevelNone = slog.Level(12)

// InitLogger creates the application logger and sets it as the slog default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	var handler slog.Handler

	switch environment {
	case "prod", "staging":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	default:
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// ParseLogLevel converts a LOG_LEVEL value to a slog level.
// "none" disables logging; unrecognised values default to debug.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LevelNone
	}

	// accept the slog text form too (e.g. "ERROR+4" as produced by LevelNone.String())
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err == nil {
		return l
	}
	return slog.LevelDebug
}

type contextKey struct{}

// logContext holds the request logger and the attributes that are added to the final request log entry.
type logContext struct {
	logger *slog.Logger

	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithRequestLogger returns a context carrying the request logger.
func ContextWithRequestLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, &logContext{logger: logger})
}

// ContextRequestLogger returns the request logger stored in ctx, or the default logger
// when the context was not created by the request logging middleware.
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if lc, ok := ctx.Value(contextKey{}).(*logContext); ok {
		return lc.logger
	}
	return slog.Default()
}

// ContextWithLogAttrs adds attributes to the final log entry written when the request completes.
// It is a no-op for contexts without a request logger.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	lc, ok := ctx.Value(contextKey{}).(*logContext)
	if !ok {
		return
	}
	lc.mu.Lock()
	lc.attrs = append(lc.attrs, attrs...)
	lc.mu.Unlock()
}

// contextLogAttrs returns a copy of the attributes collected for the request.
func contextLogAttrs(ctx context.Context) []slog.Attr {
	lc, ok := ctx.Value(contextKey{}).(*logContext)
	if !ok {
		return nil
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return append([]slog.Attr(nil), lc.attrs...)
}
