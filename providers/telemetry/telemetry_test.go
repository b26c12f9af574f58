package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/di"
	apperrors "github.com/cosyframework/cosy/errors"
)

func newApp(t *testing.T, values map[string]any) *application.Application {
	t.Helper()
	store := config.NewStore()
	if err := store.Load(context.Background(), config.NewMapSource("test", values)); err != nil {
		t.Fatal(err)
	}
	return application.New(store, application.WithEnvironment("staging"))
}

func TestDefaultsWhenSectionMissing(t *testing.T) {
	app := newApp(t, map[string]any{"app": map[string]any{"name": "orders"}})
	p := New().(*Provider)

	if err := p.Register(context.Background(), app); err != nil {
		t.Fatalf("register: %v", err)
	}
	cfg := p.Config()
	if cfg.Tracing.Enabled || cfg.Metrics.Enabled {
		t.Error("export should be disabled by default")
	}
	if cfg.Tracing.ServiceName != "orders" || cfg.Metrics.ServiceName != "orders" {
		t.Errorf("service names = %q, %q", cfg.Tracing.ServiceName, cfg.Metrics.ServiceName)
	}
	if cfg.Tracing.Environment != "staging" {
		t.Errorf("environment = %q", cfg.Tracing.Environment)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("sample rate = %v", cfg.Tracing.SampleRate)
	}
}

func TestSectionDecoding(t *testing.T) {
	app := newApp(t, map[string]any{
		"observability": map[string]any{
			"tracing": map[string]any{"enabled": true, "endpoint": "collector:4318", "sample_rate": 0.25},
			"metrics": map[string]any{"interval": "30s"},
		},
	})
	p := New().(*Provider)

	if err := p.Register(context.Background(), app); err != nil {
		t.Fatalf("register: %v", err)
	}
	cfg := p.Config()
	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "collector:4318" || cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
	if cfg.Metrics.Enabled || cfg.Metrics.Interval != 30*time.Second {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestInvalidSampleRate(t *testing.T) {
	app := newApp(t, map[string]any{
		"observability": map[string]any{"tracing": map[string]any{"sample_rate": 2}},
	})
	err := app.Register(context.Background(), New())
	if !apperrors.IsProviderFailure(err) || !apperrors.IsInvalidConfig(err) {
		t.Errorf("err = %v, want provider failure wrapping invalid config", err)
	}
}

func TestDisabledLifecycle(t *testing.T) {
	app := newApp(t, map[string]any{})
	ctx := context.Background()

	if err := app.Register(ctx, New()); err != nil {
		t.Fatal(err)
	}
	if err := app.Boot(ctx); err != nil {
		t.Fatalf("boot: %v", err)
	}
	if _, ok := di.TryResolve[trace.Tracer](app.Container(), di.Names.Tracer); !ok {
		t.Error("tracer not bound")
	}
	if _, ok := di.TryResolve[metric.Meter](app.Container(), di.Names.Meter); !ok {
		t.Error("meter not bound")
	}
	if err := app.Stop(ctx); err != nil {
		t.Errorf("stop: %v", err)
	}
}
