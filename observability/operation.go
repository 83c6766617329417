package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation is a traced unit of work: one span plus its start time.
type Operation struct {
	Name      string
	StartTime time.Time
	span      trace.Span
}

// StartOperation starts a span named name and returns the derived context.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Operation{
		Name:      name,
		StartTime: time.Now(),
		span:      span,
	}
}

// Span returns the operation's span.
func (op *Operation) Span() trace.Span {
	return op.span
}

// SetAttributes adds attributes to the operation's span.
func (op *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	op.span.SetAttributes(attrs...)
}

// End records err (if any) and the elapsed time, ends the span and returns
// the elapsed time.
func (op *Operation) End(err error) time.Duration {
	d := op.Duration()
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
	}
	op.span.SetAttributes(attribute.Int64(AttrDurationMs, d.Milliseconds()))
	op.span.End()
	return d
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
