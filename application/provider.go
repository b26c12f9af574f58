package application

import (
	"context"
	"fmt"
)

// Provider is a pluggable unit of application setup. Register binds
// services (typically into the container); Boot wires them together.
//
// Every provider's Register runs before any provider's Boot, so Boot may
// rely on bindings made by any other provider's Register. Register must not
// rely on other providers.
type Provider interface {
	Register(ctx context.Context, app *Application) error
	Boot(ctx context.Context, app *Application) error
}

// Factory constructs a provider. Bootstrap calls each factory exactly once
// per run, in the order given.
type Factory func() Provider

// Named is implemented by providers that want a stable name in logs and
// errors. Others are named after their type.
type Named interface {
	Name() string
}

// Shutdowner is implemented by providers that hold resources. Shutdown is
// called in reverse registration order when the application stops.
type Shutdowner interface {
	Shutdown(ctx context.Context, app *Application) error
}

// ProviderName returns p's name for logs and errors.
func ProviderName(p Provider) string {
	if n, ok := p.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// ProviderFuncs adapts plain functions to Provider. Nil callbacks are no-ops.
type ProviderFuncs struct {
	ID         string
	OnRegister func(ctx context.Context, app *Application) error
	OnBoot     func(ctx context.Context, app *Application) error
	OnShutdown func(ctx context.Context, app *Application) error
}

var (
	_ Provider   = (*ProviderFuncs)(nil)
	_ Named      = (*ProviderFuncs)(nil)
	_ Shutdowner = (*ProviderFuncs)(nil)
)

func (p *ProviderFuncs) Name() string { return p.ID }

func (p *ProviderFuncs) Register(ctx context.Context, app *Application) error {
	if p.OnRegister == nil {
		return nil
	}
	return p.OnRegister(ctx, app)
}

func (p *ProviderFuncs) Boot(ctx context.Context, app *Application) error {
	if p.OnBoot == nil {
		return nil
	}
	return p.OnBoot(ctx, app)
}

func (p *ProviderFuncs) Shutdown(ctx context.Context, app *Application) error {
	if p.OnShutdown == nil {
		return nil
	}
	return p.OnShutdown(ctx, app)
}
