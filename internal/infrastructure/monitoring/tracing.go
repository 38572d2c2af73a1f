package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/identra/identra/internal/config"
	"github.com/identra/identra/pkg/logger"
)

// TracingManager owns the OpenTelemetry tracer provider lifecycle.
type TracingManager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	log      logger.Logger
}

// NewTracingManager initializes tracing. When disabled it returns a manager
// backed by the global no-op tracer.
func NewTracingManager(cfg config.TracingConfig, log logger.Logger) (*TracingManager, error) {
	if !cfg.Enabled {
		return &TracingManager{tracer: otel.Tracer("identra"), log: log}, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(cfg.JaegerEndpoint),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return &TracingManager{tracer: provider.Tracer("identra"), provider: provider, log: log}, nil
}

// Tracer returns the service tracer.
func (t *TracingManager) Tracer() trace.Tracer {
	return t.tracer
}

// StartSpan opens a span for a named operation.
func (t *TracingManager) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

// Shutdown flushes pending spans. Safe to call when tracing is disabled.
func (t *TracingManager) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
