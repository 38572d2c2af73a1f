package logger

import "context"

// noopLogger discards everything. Used by tests and as a safe default.
type noopLogger struct{}

// NewNoop returns a logger that drops all entries.
func NewNoop() Logger { return noopLogger{} }

func (noopLogger) Debug(context.Context, string, ...Fields)        {}
func (noopLogger) Info(context.Context, string, ...Fields)         {}
func (noopLogger) Warn(context.Context, string, ...Fields)         {}
func (noopLogger) Error(context.Context, string, error, ...Fields) {}
func (noopLogger) Fatal(context.Context, string, error, ...Fields) {}
func (n noopLogger) WithFields(Fields) Logger                      { return n }
func (n noopLogger) WithComponent(string) Logger                   { return n }
