// Package monitoring provides the observability backends: the zap-based
// logger, prometheus metrics and the OpenTelemetry tracer.
package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/pkg/constants"
	"github.com/identra/identra/pkg/logger"
)

type zapLogger struct {
	*zap.Logger
}

// NewLogLevel returns the adjustable level a logger is built around.
// Configuration reloads update it at runtime; AtomicLevel is safe for
// concurrent use.
func NewLogLevel() zap.AtomicLevel {
	return zap.NewAtomicLevelAt(zapcore.InfoLevel)
}

// ParseLevel maps a configured level name to a zap level. Unknown names fall
// back to info.
func ParseLevel(name string) zapcore.Level {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// NewZapLogger builds the production logger: JSON encoding, ISO8601
// timestamps, level held by the given AtomicLevel and initialized from config.
func NewZapLogger(cfg config.LogConfig, level zap.AtomicLevel) logger.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level.SetLevel(ParseLevel(cfg.Level))

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	return &zapLogger{zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))}
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Debug(msg, l.convert(ctx, fields...)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Info(msg, l.convert(ctx, fields...)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Warn(msg, l.convert(ctx, fields...)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	zapFields := append(l.convert(ctx, fields...), zap.Error(err))
	l.Logger.Error(msg, zapFields...)
}

func (l *zapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	zapFields := append(l.convert(ctx, fields...), zap.Error(err))
	l.Logger.Fatal(msg, zapFields...)
}

func (l *zapLogger) WithFields(fields logger.Fields) logger.Logger {
	return &zapLogger{l.Logger.With(l.convert(context.Background(), fields)...)}
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{l.Logger.With(zap.String("component", component))}
}

func (l *zapLogger) convert(ctx context.Context, fields ...logger.Fields) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)*4+2)
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
		zapFields = append(zapFields, zap.String("request_id", requestID))
	}
	if traceID, ok := ctx.Value(constants.ContextKeyTraceID).(string); ok {
		zapFields = append(zapFields, zap.String("trace_id", traceID))
	}
	for _, f := range fields {
		for k, v := range f {
			zapFields = append(zapFields, zap.Any(k, v))
		}
	}
	return zapFields
}
