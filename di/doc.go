// Package di provides the keyed service container shared by an application
// and its providers.
//
// Providers bind services during their register phase and resolve the
// bindings of other providers during boot:
//
//	func (p *cacheProvider) Register(ctx context.Context, app *application.Application) error {
//	    return app.Container().Bind("cache", func(c di.Container) (*Cache, error) {
//	        return NewCache(di.MustResolve[*config.Store](c, di.Names.Config)), nil
//	    })
//	}
//
// Resolution is type-safe through the generic helpers:
//
//	cache := di.MustResolve[*Cache](app.Container(), "cache")
package di
