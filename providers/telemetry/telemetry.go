package telemetry

import (
	"cmp"
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/di"
	"github.com/cosyframework/cosy/logger"
	"github.com/cosyframework/cosy/observability"
	"github.com/cosyframework/cosy/version"
)

// Section is the configuration section read by the provider.
const Section = "observability"

// TracingConfig enables and configures trace export.
type TracingConfig struct {
	Enabled                    bool `mapstructure:"enabled"`
	observability.TracerConfig `mapstructure:",squash"`
}

// MetricsConfig enables and configures metric export.
type MetricsConfig struct {
	Enabled                   bool `mapstructure:"enabled"`
	observability.MeterConfig `mapstructure:",squash"`
}

// Config is the "observability" section.
type Config struct {
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// Provider installs OpenTelemetry exporters. Tracer and meter are bound
// under di.Names.Tracer and di.Names.Meter whether export is enabled or not;
// with export disabled they are the global no-op implementations.
type Provider struct {
	cfg Config
	log *logger.Logger
	tp  *sdktrace.TracerProvider
	mp  *sdkmetric.MeterProvider
}

var (
	_ application.Provider   = (*Provider)(nil)
	_ application.Named      = (*Provider)(nil)
	_ application.Shutdowner = (*Provider)(nil)
)

// New returns the provider. It satisfies application.Factory.
func New() application.Provider {
	return &Provider{}
}

func (p *Provider) Name() string { return "telemetry" }

// Config returns the decoded section. It is populated by Register.
func (p *Provider) Config() Config { return p.cfg }

// Register decodes the section and binds the tracer and meter.
func (p *Provider) Register(ctx context.Context, app *application.Application) error {
	store := app.ConfigStore()
	service := cmp.Or(store.GetString("app.name"), version.Framework)
	env := app.Environment()
	ver := version.Get().Version

	tracing := observability.DefaultTracerConfig(service)
	tracing.ServiceVersion, tracing.Environment = ver, cmp.Or(env, tracing.Environment)
	metrics := observability.DefaultMeterConfig(service)
	metrics.ServiceVersion, metrics.Environment = ver, cmp.Or(env, metrics.Environment)
	p.cfg = Config{
		Tracing: TracingConfig{TracerConfig: tracing},
		Metrics: MetricsConfig{MeterConfig: metrics},
	}

	if store.Has(Section) {
		if err := store.Unmarshal(Section, &p.cfg); err != nil {
			return err
		}
	}
	p.log = app.Logger().WithComponent(p.Name())

	c := app.Container()
	if err := c.Bind(di.Names.Tracer, func() trace.Tracer {
		return observability.Tracer(observability.InstrumentationName)
	}); err != nil {
		return err
	}
	return c.Bind(di.Names.Meter, func() metric.Meter {
		return observability.Meter(observability.InstrumentationName)
	})
}

// Boot starts the enabled exporters and installs them globally.
func (p *Provider) Boot(ctx context.Context, app *application.Application) error {
	if p.cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, &p.cfg.Tracing.TracerConfig)
		if err != nil {
			return err
		}
		p.tp = tp
	}
	if p.cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &p.cfg.Metrics.MeterConfig)
		if err != nil {
			return err
		}
		p.mp = mp
	}
	p.log.Info("Telemetry configured", map[string]interface{}{
		"tracing": p.cfg.Tracing.Enabled,
		"metrics": p.cfg.Metrics.Enabled,
	})
	return nil
}

// Shutdown flushes and stops the exporters started by Boot.
func (p *Provider) Shutdown(ctx context.Context, app *application.Application) error {
	start := time.Now()
	var errs error
	if p.tp != nil {
		errs = multierr.Append(errs, p.tp.Shutdown(ctx))
		p.tp = nil
	}
	if p.mp != nil {
		errs = multierr.Append(errs, p.mp.Shutdown(ctx))
		p.mp = nil
	}
	if p.log != nil {
		p.log.Debug("Telemetry shut down", logger.DurationFields("shutdown", time.Since(start)))
	}
	return errs
}
