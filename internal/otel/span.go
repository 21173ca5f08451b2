// Package otel provides OpenTelemetry span helpers shared by forward-slots packages.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on forwarding spans
const (
	AttrTargetCount   = attribute.Key("forwarding.targets")
	AttrSlotCount     = attribute.Key("forwarding.slots")
	AttrChannelCount  = attribute.Key("forwarding.channels")
	AttrSelectedCount = attribute.Key("forwarding.selected")
	AttrFilterNative  = attribute.Key("forwarding.filter_native")
	AttrInheritAttrs  = attribute.Key("forwarding.inherit_attrs")
	AttrPassID        = attribute.Key("forwarding.pass_id")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns the
// span already in ctx (a no-op span when there is none).
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks it failed. The status description
// stays generic; the error itself is attached as an exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
