package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	json "github.com/goccy/go-json"

	apperrors "github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/logger"
)

// Recovery returns middleware that recovers from panics, logs the stack and
// answers with a 500 INTERNAL_ERROR body.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Panic recovered", map[string]interface{}{
					logger.FieldError:     fmt.Sprintf("%v", rec),
					logger.FieldRequestID: r.Header.Get(HeaderRequestID),
					"stack":               string(debug.Stack()),
					"path":                r.URL.Path,
					"method":              r.Method,
				})

				body := apperrors.Internal(fmt.Errorf("panic: %v", rec)).ToResponse()
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(body)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
