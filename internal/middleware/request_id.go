package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fleetpulse/fleetpulse/internal/logging"
)

const (
	// RequestIDHeader is the HTTP header used for request IDs.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestIDMiddleware adds an X-Request-ID header to every response.
// If the client provides a usable one, it is reused; otherwise a new UUID is
// generated. The id is stored on the request context for logging.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// GetRequestID returns the request ID from the context, or an empty string.
func GetRequestID(ctx context.Context) string {
	return logging.RequestID(ctx)
}

// validRequestID accepts short ids of printable ASCII
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
