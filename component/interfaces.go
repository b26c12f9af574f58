package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a long-running part of an application (a server, a worker,
// a connection pool) started after boot and stopped on shutdown.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start brings the component up. It must not block past readiness.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is what a component reports about itself on the info
// endpoint and in startup logs.
type Description struct {
	// Name is the human-readable display name. Empty uses Component.Name.
	Name string `json:"name"`
	// Type categorizes the component: "server", "telemetry", "worker".
	Type string `json:"type"`
	// Details is a one-line summary such as "0.0.0.0:3000 h2c".
	Details string `json:"details,omitempty"`
	// Port is the primary port, 0 if not applicable.
	Port int `json:"port,omitempty"`
}

// Describable is optionally implemented by components.
type Describable interface {
	Describe() Description
}
