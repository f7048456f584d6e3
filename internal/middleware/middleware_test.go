package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fleetpulse/fleetpulse/internal/metrics"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{"no origins allows all", nil, "http://dash.example.com", "http://dash.example.com"},
		{"wildcard allows all", []string{"*"}, "http://other.example.com", "http://other.example.com"},
		{"listed origin", []string{"http://dash.example.com/"}, "http://dash.example.com", "http://dash.example.com"},
		{"unlisted origin", []string{"http://dash.example.com"}, "http://evil.example.com", ""},
		{"no origin header", []string{"http://dash.example.com"}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCORSMiddleware(tt.origins...).Wrap(http.HandlerFunc(okHandler))
			req := httptest.NewRequest(http.MethodGet, "/api/devices", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	handler := NewCORSMiddleware().Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/tickets", nil)
	req.Header.Set("Origin", "http://dash.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if called {
		t.Error("preflight should not reach the handler")
	}
	if w.Header().Get("Access-Control-Expose-Headers") != RequestIDHeader {
		t.Errorf("Expose-Headers = %q", w.Header().Get("Access-Control-Expose-Headers"))
	}
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/devices", okHandler)
	mux.HandleFunc("GET /api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	handler := RequestIDMiddleware(AccessLog(mux))

	for _, path := range []string{"/api/devices", "/api/missing", "/api/broken"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("log entries = %d, want 3", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Errorf("entry %d level = %s, want %s", i, e.Level, wantLevels[i])
		}
		fields := e.ContextMap()
		if fields["request_id"] == "" || fields["request_id"] == nil {
			t.Errorf("entry %d has no request_id: %v", i, fields)
		}
	}
	if got := entries[1].ContextMap()["status"]; got != int64(http.StatusNotFound) {
		t.Errorf("status field = %v, want 404", got)
	}
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/devices/{id}", okHandler)
	handler := Metrics(mux)

	route := "GET /api/devices/{id}"
	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, route, "200"))
	unmatchedBefore := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/devices/DEV-1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/devices/DEV-2", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, route, "200")) - before; got != 2 {
		t.Errorf("route requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")) - unmatchedBefore; got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}
