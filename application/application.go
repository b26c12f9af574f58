package application

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/cosyframework/cosy/component"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/di"
	apperrors "github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/logger"
	"github.com/cosyframework/cosy/observability"
)

const maxPort = 65535

// Application is a configured, provider-driven unit that moves through
// Created, Booted, Started and Stopped.
//
// Lifecycle methods are meant to be called from one goroutine; concurrent
// or re-entrant calls fail with a lifecycle order error instead of racing.
type Application struct {
	id          string
	environment string
	store       *config.Store
	container   di.Container
	components  *component.Registry
	log         *logger.Logger
	metrics     *observability.Metrics

	gracefulTimeout time.Duration

	mu         sync.Mutex
	state      State
	transition string
	hooks      Hooks
	providers  []Provider
	server     Server
	port       int
}

// New creates an application over store. The application, its store, its
// logger and its component registry are bound in the container under
// di.Names.
func New(store *config.Store, opts ...Option) *Application {
	if store == nil {
		store = config.NewStore()
	}
	o := resolveOptions(opts)

	a := &Application{
		id:              uuid.NewString(),
		environment:     o.environment,
		store:           store,
		container:       o.container,
		metrics:         o.metrics,
		server:          o.server,
		gracefulTimeout: DefaultGracefulTimeout,
	}
	if a.container == nil {
		a.container = di.NewContainer()
	}
	if o.gracefulTimeout != nil {
		a.gracefulTimeout = *o.gracefulTimeout
	}

	log := o.logger
	if log == nil {
		log = logger.Nop()
	}
	a.log = log.WithFields(map[string]interface{}{logger.FieldAppID: a.id})
	a.components = component.NewRegistry(a.log)

	if a.metrics == nil {
		if m, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName)); err == nil {
			a.metrics = m
		}
	}

	// Fresh container keys cannot collide.
	_ = a.container.Instance(di.Names.Application, a)
	_ = a.container.Instance(di.Names.Config, a.store)
	_ = a.container.Instance(di.Names.Logger, a.log)
	_ = a.container.Instance(di.Names.Components, a.components)

	return a
}

// ID returns the instance identifier assigned at creation.
func (a *Application) ID() string { return a.id }

// Environment returns the environment name the configuration was resolved for.
func (a *Application) Environment() string { return a.environment }

// Container returns the application's DI container.
func (a *Application) Container() di.Container { return a.container }

// Components returns the component registry started on Start.
func (a *Application) Components() *component.Registry { return a.components }

// Logger returns the application logger.
func (a *Application) Logger() *logger.Logger { return a.log }

// ConfigStore returns the merged configuration.
func (a *Application) ConfigStore() *config.Store { return a.store }

// Config returns the configuration value at a dot-separated path, or nil.
func (a *Application) Config(path string) any { return a.store.Get(path) }

// State returns the current lifecycle state.
func (a *Application) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Port returns the port the server was started on, or 0 before Start.
func (a *Application) Port() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.port
}

// Providers returns the registered providers in registration order.
func (a *Application) Providers() []Provider {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Provider(nil), a.providers...)
}

// SetHooks replaces the hook set.
func (a *Application) SetHooks(h Hooks) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = h
}

// SetServer installs the server driven by Start and Stop. It has no effect
// once the application has started.
func (a *Application) SetServer(s Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state < StateStarted {
		a.server = s
	}
}

// currentState describes the state for lifecycle order errors, including an
// in-flight transition.
func (a *Application) currentState() string {
	if a.transition != "" {
		return a.transition
	}
	return a.state.String()
}

// Register appends p and immediately runs its Register callback. Providers
// can only be registered before Boot.
func (a *Application) Register(ctx context.Context, p Provider) error {
	name := ProviderName(p)

	a.mu.Lock()
	if a.state != StateCreated || a.transition != "" {
		state := a.currentState()
		a.mu.Unlock()
		return apperrors.LifecycleOrder("register provider "+name, state)
	}
	a.providers = append(a.providers, p)
	a.mu.Unlock()

	ctx, phase := observability.StartPhase(ctx, observability.SpanRegister, a.metrics,
		attribute.String(observability.AttrAppID, a.id),
		attribute.String(observability.AttrProvider, name),
	)
	if err := p.Register(ctx, a); err != nil {
		a.log.Error("Provider registration failed", map[string]interface{}{
			logger.FieldProvider: name,
			logger.FieldPhase:    "register",
			logger.FieldError:    err.Error(),
		})
		return phase.End(ctx, apperrors.ProviderFailure(name, "register", err))
	}
	a.log.Debug("Provider registered", map[string]interface{}{logger.FieldProvider: name})
	return phase.End(ctx, nil)
}

// Boot runs the BeforeBoot hooks, every provider's Boot in registration
// order and the AfterBoot hooks. Any failure aborts the boot and leaves the
// application in Created; nothing is rolled back.
func (a *Application) Boot(ctx context.Context) (err error) {
	a.mu.Lock()
	if a.state != StateCreated || a.transition != "" {
		state := a.currentState()
		a.mu.Unlock()
		return apperrors.LifecycleOrder("boot", state)
	}
	a.transition = "booting"
	providers := append([]Provider(nil), a.providers...)
	hooks := a.hooks
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.transition = ""
		if err == nil {
			a.state = StateBooted
		}
		a.mu.Unlock()
	}()

	ctx, phase := observability.StartPhase(ctx, observability.SpanBoot, a.metrics,
		attribute.String(observability.AttrAppID, a.id),
		attribute.Int("cosy.providers", len(providers)),
	)
	defer func() { err = phase.End(ctx, err) }()

	if err := runHooks(ctx, "before boot", hooks.BeforeBoot, a); err != nil {
		return err
	}
	for _, p := range providers {
		name := ProviderName(p)
		if err := p.Boot(ctx, a); err != nil {
			a.log.Error("Provider boot failed", map[string]interface{}{
				logger.FieldProvider: name,
				logger.FieldPhase:    "boot",
				logger.FieldError:    err.Error(),
			})
			return apperrors.ProviderFailure(name, "boot", err)
		}
		a.log.Debug("Provider booted", map[string]interface{}{logger.FieldProvider: name})
	}
	if err := runHooks(ctx, "after boot", hooks.AfterBoot, a); err != nil {
		return err
	}

	a.log.Info("Application booted", map[string]interface{}{
		"providers":          len(providers),
		logger.FieldDuration: phase.Duration().Milliseconds(),
	})
	return nil
}

// resolvePort returns port when positive, otherwise app.port from the store.
func (a *Application) resolvePort(port int) (int, error) {
	if port <= 0 {
		n, ok, err := a.store.GetIntE("app.port")
		if !ok {
			return 0, apperrors.InvalidConfig("app.port", "no port configured")
		}
		if err != nil {
			return 0, apperrors.InvalidConfig("app.port", "not a number").WithCause(err)
		}
		port = n
	}
	if port <= 0 || port > maxPort {
		return 0, apperrors.InvalidConfig("app.port", "port out of range")
	}
	return port, nil
}

// Start runs the BeforeStart hooks, starts the registered components, binds
// the server on port and runs the AfterStart hooks. A port of zero or less
// is resolved from app.port. Start requires a booted application.
func (a *Application) Start(ctx context.Context, port int) (err error) {
	a.mu.Lock()
	if a.state != StateBooted || a.transition != "" {
		state := a.currentState()
		a.mu.Unlock()
		return apperrors.LifecycleOrder("start", state)
	}
	a.transition = "starting"
	hooks := a.hooks
	srv := a.server
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.transition = ""
		if err == nil {
			a.state = StateStarted
			a.port = port
		}
		a.mu.Unlock()
	}()

	ctx, phase := observability.StartPhase(ctx, observability.SpanStart, a.metrics,
		attribute.String(observability.AttrAppID, a.id),
		attribute.String(observability.AttrDeploymentEnv, a.environment),
	)
	defer func() { err = phase.End(ctx, err) }()

	port, err = a.resolvePort(port)
	if err != nil {
		return err
	}
	phase.Span().SetAttributes(attribute.Int(observability.AttrPort, port))

	if srv == nil {
		if s, ok := di.TryResolve[Server](a.container, di.Names.HTTPServer); ok {
			srv = s
		}
	}
	if srv == nil {
		return apperrors.InvalidConfig("server", "no server installed")
	}

	if err := runHooks(ctx, "before start", hooks.BeforeStart, a); err != nil {
		return err
	}
	if err := a.components.StartAll(ctx); err != nil {
		return err
	}
	if err := srv.Serve(ctx, port); err != nil {
		return multierr.Append(err, a.components.StopAll(ctx))
	}

	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	if err := runHooks(ctx, "after start", hooks.AfterStart, a); err != nil {
		return multierr.Combine(err, srv.Shutdown(ctx), a.components.StopAll(ctx))
	}

	a.log.Info("Application started", map[string]interface{}{
		"port":               port,
		logger.FieldEnv:      a.environment,
		logger.FieldDuration: phase.Duration().Milliseconds(),
	})
	return nil
}

// Stop runs the BeforeStop hooks, shuts the server down, stops components in
// reverse order, shuts providers down in reverse registration order and
// closes the container. Every step runs even if an earlier one failed; the
// errors are combined. Stopping a stopped application is a no-op.
//
// A booted application that never started can be stopped too, which
// releases what its providers acquired.
func (a *Application) Stop(ctx context.Context) (err error) {
	a.mu.Lock()
	switch {
	case a.state == StateStopped:
		a.mu.Unlock()
		return nil
	case a.transition != "", a.state == StateCreated:
		state := a.currentState()
		a.mu.Unlock()
		return apperrors.LifecycleOrder("stop", state)
	}
	a.transition = "stopping"
	started := a.state == StateStarted
	hooks := a.hooks
	srv := a.server
	providers := append([]Provider(nil), a.providers...)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.transition = ""
		a.state = StateStopped
		a.mu.Unlock()
	}()

	ctx, phase := observability.StartPhase(ctx, observability.SpanStop, a.metrics,
		attribute.String(observability.AttrAppID, a.id),
	)
	defer func() { err = phase.End(ctx, err) }()

	a.log.Info("Shutting down application")

	var errs error
	if herr := runHooks(ctx, "before stop", hooks.BeforeStop, a); herr != nil {
		a.log.Error("BeforeStop hook error", logger.ErrorFields("stop", herr))
		errs = multierr.Append(errs, herr)
	}

	if started && srv != nil {
		if serr := srv.Shutdown(ctx); serr != nil {
			a.log.Error("Server shutdown error", logger.ErrorFields("stop", serr))
			errs = multierr.Append(errs, serr)
		}
	}
	if started {
		errs = multierr.Append(errs, a.components.StopAll(ctx))
	}

	for i := len(providers) - 1; i >= 0; i-- {
		s, ok := providers[i].(Shutdowner)
		if !ok {
			continue
		}
		if perr := s.Shutdown(ctx, a); perr != nil {
			name := ProviderName(providers[i])
			a.log.Error("Provider shutdown error", map[string]interface{}{
				logger.FieldProvider: name,
				logger.FieldPhase:    "shutdown",
				logger.FieldError:    perr.Error(),
			})
			errs = multierr.Append(errs, apperrors.ProviderFailure(name, "shutdown", perr))
		}
	}

	if cerr := a.container.Close(ctx); cerr != nil {
		a.log.Error("DI container close error", logger.ErrorFields("stop", cerr))
		errs = multierr.Append(errs, cerr)
	}

	a.log.Info("Application shutdown complete")
	return errs
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx cancellation. It returns
// the signal received, or nil when ctx ended first.
func (a *Application) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.log.Info("Context canceled, shutting down")
		return nil
	}
}

// Wait blocks until a shutdown signal or ctx cancellation, then stops the
// application within the graceful timeout.
func (a *Application) Wait(ctx context.Context) error {
	a.WaitForSignal(ctx)

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()
	return a.Stop(stopCtx)
}
