// Package tracing configures OpenTelemetry tracing and the HTTP server
// instrumentation that feeds it.
package tracing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// Provider owns the tracer provider for the life of the process
type Provider struct {
	service string
	tp      *sdktrace.TracerProvider
}

// Init installs a global tracer provider exporting spans over OTLP/HTTP to
// endpoint. An empty endpoint leaves the global no-op provider in place.
func Init(ctx context.Context, serviceName, endpoint string) (*Provider, error) {
	if serviceName == "" {
		return nil, fmt.Errorf("tracing: service name is required")
	}
	p := &Provider{service: serviceName}
	if endpoint == "" {
		zap.L().Info("tracing disabled, no OTLP endpoint configured")
		return p, nil
	}

	exporter, err := newTraceExporter(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("tracing: create exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: create resource: %w", err)
	}

	p.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	zap.L().Info("tracing enabled", zap.String("endpoint", endpoint), zap.String("service", serviceName))
	return p, nil
}

// Enabled reports whether spans are exported
func (p *Provider) Enabled() bool {
	return p != nil && p.tp != nil
}

// Middleware wraps next with otelhttp server spans named after the service
func (p *Provider) Middleware(next http.Handler) http.Handler {
	if !p.Enabled() {
		return next
	}
	return otelhttp.NewHandler(next, p.service)
}

// Shutdown flushes pending spans
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

func newTraceExporter(ctx context.Context, endpoint string) (*otlptrace.Exporter, error) {
	var opts []otlptracehttp.Option

	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" {
		if parsed.Host == "" {
			return nil, fmt.Errorf("invalid OTLP endpoint: %s", endpoint)
		}
		opts = append(opts, otlptracehttp.WithEndpoint(parsed.Host))
		if parsed.Path != "" && parsed.Path != "/" {
			opts = append(opts, otlptracehttp.WithURLPath(parsed.Path))
		}
		if parsed.Scheme == "http" {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return otlptracehttp.New(ctx, opts...)
}
