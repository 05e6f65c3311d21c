package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// tracer stays nil until Setup runs, which makes every span a no-op.
var tracer trace.Tracer

func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName)
}

// TraceID returns the trace id carried by ctx, or "" outside a trace.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if tracer == nil || !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// Propagate writes the trace context of ctx into carrier so a consumer can
// continue the trace.
func Propagate(ctx context.Context, carrier propagation.TextMapCarrier) {
	if tracer == nil {
		return
	}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
}
