package application

import (
	"time"

	"github.com/cosyframework/cosy/di"
	"github.com/cosyframework/cosy/logger"
	"github.com/cosyframework/cosy/observability"
)

// DefaultGracefulTimeout bounds the Stop issued by Wait.
const DefaultGracefulTimeout = 15 * time.Second

// Option configures an Application during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	container       di.Container
	environment     string
	server          Server
	metrics         *observability.Metrics
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithContainer sets a custom DI container.
func WithContainer(c di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithEnvironment records the resolved environment name.
func WithEnvironment(name string) Option {
	return func(o *appOptions) {
		o.environment = name
	}
}

// WithServer installs the server driven by Start and Stop.
func WithServer(s Server) Option {
	return func(o *appOptions) {
		o.server = s
	}
}

// WithMetrics sets the instruments lifecycle phases are recorded on.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *appOptions) {
		o.metrics = m
	}
}

// WithGracefulTimeout sets the maximum duration of the Stop issued by Wait.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
