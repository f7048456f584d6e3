package logging

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"json info", "info", "json", false},
		{"console debug", "DEBUG", "console", false},
		{"default format", "warn", "", false},
		{"bad level", "loud", "json", true},
		{"bad format", "info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && logger == nil {
				t.Fatal("expected a logger")
			}
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	logger, err := New("warn", "json")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestFromContext_IncludesRequestAndTrace(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Install(zap.New(core))
	defer restore()

	traceID, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	spanID, _ := trace.SpanIDFromHex("0123456789abcdef")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-1")

	FromContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Errorf("request_id = %v", fields["request_id"])
	}
	if fields["trace_id"] != traceID.String() {
		t.Errorf("trace_id = %v, want %s", fields["trace_id"], traceID)
	}
	if fields["span_id"] != spanID.String() {
		t.Errorf("span_id = %v, want %s", fields["span_id"], spanID)
	}
}

func TestFromContext_Bare(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Install(zap.New(core))
	defer restore()

	FromContext(context.Background()).Info("plain")

	if got := len(logs.All()[0].Context); got != 0 {
		t.Errorf("expected no fields, got %d", got)
	}
}

func TestRequestID_Empty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if RequestID(ctx) != "" {
		t.Error("expected empty request id")
	}
}
