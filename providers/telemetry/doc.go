// Package telemetry provides an application provider that installs the
// OpenTelemetry tracer and meter providers described by the "observability"
// configuration section, and shuts them down when the application stops.
//
//	observability:
//	  tracing:
//	    enabled: true
//	    endpoint: otel-collector:4318
//	    sample_rate: 0.25
//	  metrics:
//	    enabled: true
//	    interval: 30s
package telemetry
