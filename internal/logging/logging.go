// Package logging builds the process zap logger and derives request-scoped
// loggers carrying the request id and trace identifiers.
package logging

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type requestIDKey struct{}

// New builds a logger at level ("debug", "info", "warn", "error") writing
// JSON or console-encoded lines to stderr.
func New(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case FormatJSON, "":
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Install replaces the zap globals with logger and returns a function that
// restores the previous globals.
func Install(logger *zap.Logger) func() {
	return zap.ReplaceGlobals(logger)
}

// WithRequestID stores the request id on ctx
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored on ctx, or ""
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext returns the global logger decorated with the request id and
// the active span's trace and span ids, when present.
func FromContext(ctx context.Context) *zap.Logger {
	logger := zap.L()
	if ctx == nil {
		return logger
	}

	fields := make([]zap.Field, 0, 3)
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
