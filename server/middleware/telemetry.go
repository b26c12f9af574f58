package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/cosyframework/cosy/observability"
)

// Telemetry returns middleware that opens a server span per request,
// continuing any trace propagated by the caller, and records request
// metrics. A nil metrics skips measurement.
func Telemetry(metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := observability.StartSpan(ctx, observability.SpanHTTPRequest,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			if metrics != nil {
				metrics.RecordRequestStart(ctx)
			}
			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", sw.status))
			if id := r.Header.Get(HeaderRequestID); id != "" {
				span.SetAttributes(attribute.String(observability.AttrRequestID, id))
			}
			if metrics != nil {
				metrics.RecordRequestEnd(ctx, r.Method, r.URL.Path, sw.status, time.Since(start))
			}
		})
	}
}
