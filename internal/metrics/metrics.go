// Package metrics provides Prometheus metrics for the fleetpulse service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fleetpulse"

var (
	// HTTPRequestsTotal tracks handled API requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration tracks API request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// SystemEventsTotal tracks system events written to the event log
	SystemEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "written_total",
			Help:      "Total number of system events written by type and severity",
		},
		[]string{"type", "severity"},
	)

	// NotificationsTotal tracks device notifications by delivery outcome
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Total number of device notifications by notifier and status",
		},
		[]string{"notifier", "status"},
	)

	// RollupRunsTotal tracks analytics rollup runs
	RollupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollup",
			Name:      "runs_total",
			Help:      "Total number of analytics rollup runs by status",
		},
		[]string{"status"},
	)

	// RollupDuration tracks how long one rollup takes
	RollupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rollup",
			Name:      "duration_seconds",
			Help:      "Duration of analytics rollup runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
