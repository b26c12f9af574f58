// Package observability provides OpenTelemetry tracing and metrics for the
// application lifecycle and the HTTP server.
//
// Lifecycle steps are wrapped in phases:
//
//	ctx, phase := observability.StartPhase(ctx, observability.SpanBoot, metrics)
//	err := bootProviders(ctx)
//	return phase.End(ctx, err)
//
// Spans and measurements go to the global providers, which are no-ops until
// InitTracer and InitMeter install real ones (the telemetry provider does
// this from the "observability" config section).
package observability
