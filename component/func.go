package component

import "context"

// Func adapts plain functions to Component. Nil callbacks are no-ops and a
// nil Check reports healthy.
type Func struct {
	ID      string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
	Check   func(ctx context.Context) error
}

func (f *Func) Name() string { return f.ID }

func (f *Func) Start(ctx context.Context) error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart(ctx)
}

func (f *Func) Stop(ctx context.Context) error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop(ctx)
}

func (f *Func) Health(ctx context.Context) Health {
	h := Health{Name: f.ID, Status: StatusHealthy}
	if f.Check != nil {
		if err := f.Check(ctx); err != nil {
			h.Status = StatusUnhealthy
			h.Message = err.Error()
		}
	}
	return h
}
