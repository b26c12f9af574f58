// Package server provides the default HTTP server installed by bootstrap.
//
// It serves a gin engine behind h2c on the port the application resolves
// from app.port, and exposes operational endpoints:
//
//   - /health: aggregated component health
//   - /liveness: process liveness probe
//   - /readiness: readiness probe, failing while draining
//   - /info: application identity and build information
//   - /metrics: runtime memory and goroutine figures
//
// Middleware (server/middleware) is applied around the whole handler:
// recovery, request IDs, tracing and request metrics, CORS, body size
// limits and request logging.
package server
