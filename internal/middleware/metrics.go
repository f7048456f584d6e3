package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fleetpulse/fleetpulse/internal/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency per route. It must wrap the
// ServeMux directly: the mux stores the matched pattern on the request it
// receives, and the route label is read back from there.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
