package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/logging"
	"github.com/fleetpulse/fleetpulse/internal/metrics"
)

// Version is reported by the health endpoints. Overridden at build time.
var Version = "dev"

const pingTimeout = 2 * time.Second

// HTTPHandler serves the health and metrics endpoints
type HTTPHandler struct {
	db      *gorm.DB
	started time.Time
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{
		db:      db,
		started: time.Now(),
	}
}

// SetupRoutes configures all HTTP routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /health/detailed", h.handleHealthDetailed)
	mux.Handle("GET /metrics", metrics.Handler())
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// handleHealth returns a simple liveness response
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.RespondSuccess(w, http.StatusOK, HealthStatus{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// DatabaseHealth reports the database check of GET /health/detailed
type DatabaseHealth struct {
	Status    string           `json:"status"`
	LatencyMs float64          `json:"latencyMs"`
	Error     string           `json:"error,omitempty"`
	Tables    map[string]int64 `json:"tables,omitempty"`
}

// RuntimeHealth reports Go runtime figures
type RuntimeHealth struct {
	Goroutines  int    `json:"goroutines"`
	HeapAllocMB uint64 `json:"heapAllocMb"`
	SysMB       uint64 `json:"sysMb"`
	NumGC       uint32 `json:"numGc"`
	GoVersion   string `json:"goVersion"`
}

// DetailedHealth is the body of GET /health/detailed
type DetailedHealth struct {
	HealthStatus
	Database DatabaseHealth `json:"database"`
	Runtime  RuntimeHealth  `json:"runtime"`
}

// handleHealthDetailed checks the database and reports runtime figures.
// A failed ping marks the service degraded and answers 503.
func (h *HTTPHandler) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	out := DetailedHealth{
		HealthStatus: HealthStatus{
			Status:  "ok",
			Version: Version,
			Uptime:  time.Since(h.started).Round(time.Second).String(),
		},
		Runtime: runtimeHealth(),
	}

	latency, err := database.Ping(ctx, h.db)
	out.Database.LatencyMs = float64(latency.Microseconds()) / 1000
	if err != nil {
		logging.FromContext(r.Context()).Warn("database health check failed", zap.Error(err))
		out.Status = "degraded"
		out.Database.Status = "down"
		out.Database.Error = "database unreachable"
		api.RespondJSON(w, http.StatusServiceUnavailable, api.Response{
			Success:   false,
			Data:      out,
			Error:     &api.ErrorBody{Message: "Service degraded"},
			Timestamp: time.Now().UTC().Format(api.TimestampFormat),
		})
		return
	}

	out.Database.Status = "up"
	out.Database.Tables = h.tableCounts(ctx)
	api.RespondSuccess(w, http.StatusOK, out)
}

// tableCounts counts the rows of every table. Tables that fail to count are
// left out.
func (h *HTTPHandler) tableCounts(ctx context.Context) map[string]int64 {
	counts := make(map[string]int64)
	for _, m := range database.AllModels() {
		named, ok := m.(interface{ TableName() string })
		if !ok {
			continue
		}
		var n int64
		if err := h.db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			logging.FromContext(ctx).Warn("failed to count table",
				zap.String("table", named.TableName()), zap.Error(err))
			continue
		}
		counts[named.TableName()] = n
	}
	return counts
}

func runtimeHealth() RuntimeHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeHealth{
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: m.HeapAlloc / 1024 / 1024,
		SysMB:       m.Sys / 1024 / 1024,
		NumGC:       m.NumGC,
		GoVersion:   runtime.Version(),
	}
}
