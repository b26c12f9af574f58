// Package bootstrap assembles a running application from configuration
// files, environment overlays and provider factories.
//
// # Quick Start
//
//	app, err := bootstrap.Run(ctx, bootstrap.Options{
//	    ConfigPath: "./config",
//	    Providers: []application.Factory{
//	        func() application.Provider { return &cacheProvider{} },
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = app.Wait(ctx)
//
// Start loads ./config/app.json, then ./config/<APP_ENV>.json over it,
// registers every provider, boots them, and starts the server on app.port.
// Missing files are skipped; a malformed file aborts before any provider
// runs.
package bootstrap
