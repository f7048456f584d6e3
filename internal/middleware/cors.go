package middleware

import (
	"net/http"
	"strings"
)

// CORSMiddleware handles Cross-Origin Resource Sharing headers
type CORSMiddleware struct {
	allowedOrigins []string
	allowAll       bool
}

// NewCORSMiddleware creates a new CORS middleware.
// If no origins are specified, or one of them is "*", all origins are allowed.
func NewCORSMiddleware(allowedOrigins ...string) *CORSMiddleware {
	origins := make([]string, 0, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
			continue
		case "*":
			allowAll = true
		}
		origins = append(origins, o)
	}
	return &CORSMiddleware{
		allowedOrigins: origins,
		allowAll:       allowAll || len(origins) == 0,
	}
}

// Wrap wraps an http.Handler with CORS headers
func (c *CORSMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && c.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		// Preflight requests never reach the API handlers
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *CORSMiddleware) isAllowedOrigin(origin string) bool {
	if c.allowAll {
		return true
	}
	for _, allowed := range c.allowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
