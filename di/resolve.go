package di

import (
	"errors"
	"fmt"
)

// Errors returned by the typed resolvers. Both wrap the key.
var (
	ErrNotBound     = errors.New("not registered")
	ErrTypeMismatch = errors.New("type mismatch")
)

// Resolve resolves key and asserts the instance to T.
//
//	srv, err := di.Resolve[application.Server](app.Container(), di.Names.HTTPServer)
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, fmt.Errorf("di: resolve %s: %w", key, err)
	}
	result, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: %s is %T, want %T: %w", key, instance, zero, ErrTypeMismatch)
	}
	return result, nil
}

// MustResolve is Resolve for mandatory bindings; it panics on failure.
//
//	store := di.MustResolve[*config.Store](app.Container(), di.Names.Config)
func MustResolve[T any](c Container, key string) T {
	result, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return result
}

// TryResolve is Resolve for optional bindings. It reports false when key is
// unbound, its constructor fails, or the instance is not a T.
//
//	if meter, ok := di.TryResolve[metric.Meter](c, di.Names.Meter); ok {
//	    counter, _ = meter.Int64Counter("jobs")
//	}
func TryResolve[T any](c Container, key string) (T, bool) {
	result, err := Resolve[T](c, key)
	return result, err == nil
}
