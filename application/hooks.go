package application

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback. Hooks run sequentially; the first error
// aborts the step that runs them (except BeforeStop, whose errors are
// collected so shutdown always completes).
type Hook func(ctx context.Context, app *Application) error

// Hooks groups the callbacks run around each lifecycle step.
type Hooks struct {
	// BeforeBoot runs before any provider's Boot.
	BeforeBoot []Hook
	// AfterBoot runs after every provider booted, before the state changes.
	AfterBoot []Hook
	// BeforeStart runs before components start and the server binds.
	BeforeStart []Hook
	// AfterStart runs once the server is listening.
	AfterStart []Hook
	// BeforeStop runs before the server and components are shut down.
	BeforeStop []Hook
}

// Merge returns h with other's hooks appended stage by stage.
func (h Hooks) Merge(other Hooks) Hooks {
	return Hooks{
		BeforeBoot:  append(append([]Hook(nil), h.BeforeBoot...), other.BeforeBoot...),
		AfterBoot:   append(append([]Hook(nil), h.AfterBoot...), other.AfterBoot...),
		BeforeStart: append(append([]Hook(nil), h.BeforeStart...), other.BeforeStart...),
		AfterStart:  append(append([]Hook(nil), h.AfterStart...), other.AfterStart...),
		BeforeStop:  append(append([]Hook(nil), h.BeforeStop...), other.BeforeStop...),
	}
}

func runHooks(ctx context.Context, stage string, hooks []Hook, app *Application) error {
	for i, h := range hooks {
		if err := h(ctx, app); err != nil {
			return fmt.Errorf("%s hook %d failed: %w", stage, i, err)
		}
	}
	return nil
}
