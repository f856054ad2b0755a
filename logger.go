package bytedoc

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with bytedoc-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithWidth adds the document's address width to the logger.
func (l *Logger) WithWidth(width string) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width),
	}
}

// LogAlloc logs an allocation at debug level.
func (l *Logger) LogAlloc(ctx context.Context, addr uint32, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocation failed",
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "allocation completed",
			"addr", addr,
			"size", size,
		)
	}
}

// LogExport logs a document export.
func (l *Logger) LogExport(ctx context.Context, size int) {
	l.InfoContext(ctx, "document exported",
		"size", size,
	)
}
