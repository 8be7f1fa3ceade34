// Package logger provides structured logging for the accessibility triage pipeline.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

// Logger is the logging interface used throughout the pipeline.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// SlogLogger wraps a *slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger backed by log/slog.
func NewSlogLogger(debug bool, format string) *SlogLogger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return &SlogLogger{logger: slog.New(handler)}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

// Info logs an info message.
func (l *SlogLogger) Info(msg string, args ...any) { l.logger.Info(msg, args...) }

// Warn logs a warning message.
func (l *SlogLogger) Warn(msg string, args ...any) { l.logger.Warn(msg, args...) }

// Error logs an error message.
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// With returns a logger with additional context attributes.
func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NewSlogLogger(false, "text")
)

// SetupLogger configures the global logger.
func SetupLogger(debug bool, format string) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = NewSlogLogger(debug, format)
}

// GetGlobalLogger returns the process-wide logger.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
