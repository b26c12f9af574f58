package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Phase tracks one lifecycle step: a span plus a duration measurement.
type Phase struct {
	Name      string
	StartTime time.Time
	Metrics   *Metrics

	span trace.Span
}

// StartPhase opens a span named name. If metrics is nil, metric recording
// is skipped.
func StartPhase(ctx context.Context, name string, metrics *Metrics, attrs ...attribute.KeyValue) (context.Context, *Phase) {
	attrs = append([]attribute.KeyValue{attribute.String(AttrPhase, name)}, attrs...)
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Phase{
		Name:      name,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
}

// Span returns the phase's span.
func (p *Phase) Span() trace.Span { return p.span }

// End closes the span and records the outcome. It returns err so callers
// can write `return phase.End(ctx, err)`.
func (p *Phase) End(ctx context.Context, err error) error {
	duration := p.Duration()
	status := "ok"
	if err != nil {
		status = "error"
		SetSpanError(p.span, err)
		p.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	p.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	p.span.End()

	if p.Metrics != nil {
		p.Metrics.RecordPhase(ctx, p.Name, status, duration)
	}
	return err
}

// Duration returns the elapsed time since the phase started.
func (p *Phase) Duration() time.Duration {
	return time.Since(p.StartTime)
}
