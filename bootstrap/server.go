package bootstrap

import (
	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/observability"
	"github.com/cosyframework/cosy/server"
	"github.com/cosyframework/cosy/server/endpoint"
)

// newHTTPServer builds the built-in server from the "server" section with
// the standard middleware and operational endpoints installed.
func newHTTPServer(store *config.Store, app *application.Application, service string, metrics *observability.Metrics) (*server.Server, error) {
	var cfg server.Config
	cfg.ApplyDefaults()
	if store.Has("server") {
		if err := store.Unmarshal("server", &cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.InvalidConfig("server", "validation failed").WithCause(err)
	}

	srv := server.New(cfg, app.Logger())
	srv.ApplyMiddleware(metrics)
	srv.RegisterDefaultEndpoints(endpoint.ServiceInfo{
		Service:     service,
		AppID:       app.ID(),
		Environment: app.Environment(),
		Components:  app.Components().Describe,
	}, app.Components().HealthAll)
	return srv, nil
}
