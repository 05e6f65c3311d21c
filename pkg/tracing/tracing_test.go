package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
)

func TestTraceContext(t *testing.T) {
	t.Cleanup(func() { tracer = nil })

	assert.Empty(t, TraceID(context.Background()))

	shutdown, err := Setup(context.Background(), OTLPConfig{ServiceName: "vesselradar-test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, span := StartSpan(context.Background(), "test")
	defer span.End()

	traceID := TraceID(ctx)
	require.Len(t, traceID, 32)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	carrier := propagation.MapCarrier{}
	Propagate(ctx, carrier)
	assert.Contains(t, carrier.Get("traceparent"), traceID)

	empty := propagation.MapCarrier{}
	Propagate(context.Background(), empty)
	assert.Empty(t, empty.Get("traceparent"))
}
