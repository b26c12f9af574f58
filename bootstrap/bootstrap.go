package bootstrap

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/di"
	"github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/logger"
	"github.com/cosyframework/cosy/observability"
)

// DefaultName is the service name used when app.name is not configured.
const DefaultName = "cosy"

// State is the progress of a Bootstrap's Start.
type State int

const (
	StateCreated State = iota
	StateConfigLoaded
	StateProvidersRegistered
	StateBooted
	StateStarted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateConfigLoaded:
		return "config loaded"
	case StateProvidersRegistered:
		return "providers registered"
	case StateBooted:
		return "booted"
	case StateStarted:
		return "started"
	default:
		return "unknown"
	}
}

// Bootstrap drives one application from configuration to a listening
// server. It is single-use: Start runs at most once.
type Bootstrap struct {
	opts    Options
	store   *config.Store
	log     *logger.Logger
	metrics *observability.Metrics
	initErr error

	mu       sync.Mutex
	state    State
	started  bool
	app      *application.Application
	duration time.Duration
}

// New prepares a Bootstrap. Options.Config becomes the first configuration
// layer; nothing else is read until Start.
func New(opts Options) *Bootstrap {
	opts.applyDefaults()

	b := &Bootstrap{
		opts:  opts,
		store: config.NewStore(),
		log:   opts.Logger,
	}
	if b.log == nil {
		b.log = logger.GetGlobalLogger()
	}
	if opts.Config != nil {
		b.initErr = b.store.Load(context.Background(), config.NewMapSource("options", opts.Config))
	}
	if m, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName)); err == nil {
		b.metrics = m
	}
	return b
}

// Create is New under the name used by callers that build an application
// without starting it.
func Create(opts Options) *Bootstrap {
	return New(opts)
}

// Run is New(opts).Start(ctx).
func Run(ctx context.Context, opts Options) (*application.Application, error) {
	return New(opts).Start(ctx)
}

// State returns how far Start progressed.
func (b *Bootstrap) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Store returns the configuration store. Before Start it holds only
// Options.Config.
func (b *Bootstrap) Store() *config.Store { return b.store }

// Application returns the application, or nil until configuration has been
// loaded by Start.
func (b *Bootstrap) Application() *application.Application {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.app
}

func (b *Bootstrap) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Start loads configuration, instantiates and registers the providers,
// boots them and starts the application on the configured app.port. The
// first failure aborts the sequence and is returned unchanged; nothing is
// rolled back. A second call fails with a lifecycle order error.
func (b *Bootstrap) Start(ctx context.Context) (*application.Application, error) {
	b.mu.Lock()
	if b.started {
		state := b.state
		b.mu.Unlock()
		return nil, errors.LifecycleOrder("start bootstrap", state.String())
	}
	b.started = true
	b.mu.Unlock()

	if b.initErr != nil {
		return nil, b.initErr
	}
	begin := time.Now()

	env, err := b.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	b.setState(StateConfigLoaded)

	app, err := b.newApplication(env)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.app = app
	b.mu.Unlock()

	if b.opts.Hooks != nil {
		app.SetHooks(*b.opts.Hooks)
	}
	if err := b.registerProviders(ctx, app); err != nil {
		return nil, err
	}
	b.setState(StateProvidersRegistered)

	if err := app.Boot(ctx); err != nil {
		return nil, err
	}
	b.setState(StateBooted)

	if err := app.Start(ctx, 0); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.state = StateStarted
	b.duration = time.Since(begin)
	b.mu.Unlock()

	if b.opts.SummaryOutput != nil {
		b.Summary().Display(b.opts.SummaryOutput, app.Components())
	}
	return app, nil
}

// loadConfig loads the dotenv file, resolves the environment once and
// merges the file layers and the optional environment variable layer.
func (b *Bootstrap) loadConfig(ctx context.Context) (env string, err error) {
	ctx, phase := observability.StartPhase(ctx, observability.SpanConfigLoad, b.metrics)
	defer func() { err = phase.End(ctx, err) }()

	if b.opts.EnvFile != "-" {
		found, err := config.LoadEnvFile(b.opts.FileSystem, b.opts.EnvFile)
		if err != nil {
			return "", err
		}
		if found {
			b.log.Debug("Env file loaded", logger.Fields("path", b.opts.EnvFile))
		}
	}

	env = b.opts.Environment.Current()
	phase.Span().SetAttributes(attribute.String(observability.AttrDeploymentEnv, env))

	_, err = config.LoadLayers(ctx, b.store, config.LayerOptions{
		Dir:         b.opts.ConfigPath,
		Environment: env,
		Formats:     b.opts.Formats,
		FS:          b.opts.FileSystem,
		Logger:      b.log,
	})
	if err != nil {
		return "", err
	}
	if b.opts.EnvPrefix != "" {
		if err := b.store.Load(ctx, config.NewEnvSource(b.opts.EnvPrefix)); err != nil {
			return "", err
		}
	}
	phase.Span().SetAttributes(attribute.StringSlice(observability.AttrLayer, b.store.Layers()))

	if b.opts.Logger == nil {
		l, err := loggerFromConfig(b.store, b.serviceName())
		if err != nil {
			return "", err
		}
		b.log = l
	}

	b.log.Info("Configuration loaded", map[string]interface{}{
		logger.FieldEnv: env,
		"layers":        len(b.store.Layers()),
	})
	return env, nil
}

func (b *Bootstrap) serviceName() string {
	return cmp.Or(b.store.GetString("app.name"), DefaultName)
}

// loggerFromConfig builds the global logger from the "logging" section.
func loggerFromConfig(store *config.Store, service string) (*logger.Logger, error) {
	var cfg logger.Config
	cfg.ApplyDefaults()
	if store.Has("logging") {
		if err := store.Unmarshal("logging", &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.InvalidConfig("logging", err.Error())
	}
	return logger.Init(cfg, service), nil
}

func (b *Bootstrap) newApplication(env string) (*application.Application, error) {
	opts := []application.Option{
		application.WithEnvironment(env),
		application.WithLogger(b.log),
		application.WithGracefulTimeout(b.opts.GracefulTimeout),
	}
	if b.metrics != nil {
		opts = append(opts, application.WithMetrics(b.metrics))
	}
	if b.opts.Container != nil {
		opts = append(opts, application.WithContainer(b.opts.Container))
	}
	app := application.New(b.store, opts...)

	srv := b.opts.Server
	if srv == nil {
		s, err := newHTTPServer(b.store, app, b.serviceName(), b.metrics)
		if err != nil {
			return nil, err
		}
		srv = s
	}
	if err := app.Container().Instance(di.Names.HTTPServer, srv); err != nil {
		return nil, err
	}
	app.SetServer(srv)
	return app, nil
}

func (b *Bootstrap) registerProviders(ctx context.Context, app *application.Application) error {
	for i, factory := range b.opts.Providers {
		if factory == nil {
			return errors.ProviderFailure(fmt.Sprintf("factory %d", i), "register", stderrors.New("nil factory"))
		}
		p := factory()
		if p == nil {
			return errors.ProviderFailure(fmt.Sprintf("factory %d", i), "register", stderrors.New("factory returned nil"))
		}
		if err := app.Register(ctx, p); err != nil {
			return err
		}
	}
	b.log.Info("Providers registered", logger.Fields("count", len(b.opts.Providers)))
	return nil
}
