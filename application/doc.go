// Package application holds the Application lifecycle: providers register
// and boot against a merged configuration store, then the application
// starts a server on a port and stops it in reverse order.
//
// Providers are two-phase. All Register callbacks run before any Boot
// callback, so a provider's Boot can resolve anything another provider
// bound during Register:
//
//	app := application.New(store, application.WithServer(srv))
//	app.Register(ctx, &cacheProvider{})
//	app.Register(ctx, &sessionProvider{}) // Boot resolves the cache
//	if err := app.Boot(ctx); err != nil {
//	    return err
//	}
//	if err := app.Start(ctx, 0); err != nil { // 0 reads app.port
//	    return err
//	}
//	return app.Wait(ctx)
//
// Lifecycle methods called out of order return an errors.LifecycleOrder
// error; provider callbacks that fail are wrapped in errors.ProviderFailure.
package application
