// Package logger provides a simple wrapper around slog for structured logging.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the global logger instance.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup replaces the global logger. With a non-empty path, records are
// appended to that file so they do not corrupt the terminal UI; the returned
// closer releases it. An empty path logs to stderr.
func Setup(path string, level slog.Level) (io.Closer, error) {
	opts := &slog.HandlerOptions{Level: level}
	if path == "" {
		Logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	Logger = slog.New(slog.NewTextHandler(f, opts))
	return f, nil
}

// Discard silences the global logger.
func Discard() {
	Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
