package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fleetpulse/fleetpulse/internal/logging"
)

// AccessLog logs one line per request. Server errors log at error level,
// client errors at warn, everything else at info.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		level := zapcore.InfoLevel
		switch {
		case rec.status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case rec.status >= http.StatusBadRequest:
			level = zapcore.WarnLevel
		}

		logging.FromContext(r.Context()).Log(level, "http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}
