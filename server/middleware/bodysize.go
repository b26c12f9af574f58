package middleware

import (
	"net/http"

	"github.com/cosyframework/cosy/util"
)

const defaultMaxBodySize = 10 << 20

// BodySizeLimit returns middleware that restricts request bodies to maxSize
// (e.g. "10MB", "512KB"). Unparseable sizes fall back to 10MB.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
