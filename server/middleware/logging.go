package middleware

import (
	"net/http"
	"time"

	"github.com/cosyframework/cosy/logger"
)

// probePaths are the operational endpoints that are polled constantly and
// would drown the request log.
var probePaths = map[string]bool{
	"/health":    true,
	"/liveness":  true,
	"/readiness": true,
	"/metrics":   true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status code and duration. Probe endpoints are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"status":             sw.status,
				"bytes":              sw.written,
				logger.FieldDuration: duration.Milliseconds(),
			}
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if duration > 500*time.Millisecond {
				fields["slow"] = true
			}

			logByStatus(log, fields, sw.status)
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
