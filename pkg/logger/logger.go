// Package logger defines the context-aware structured logging contract used by
// every Identra component. The production implementation lives in
// internal/infrastructure/monitoring and is backed by zap.
package logger

import "context"

// Fields is a bag of structured key-value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the logging contract consumed across the core.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	Fatal(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields returns a derived logger that attaches the given fields to
	// every subsequent entry.
	WithFields(fields Fields) Logger

	// WithComponent returns a derived logger scoped to a named component.
	WithComponent(component string) Logger
}
