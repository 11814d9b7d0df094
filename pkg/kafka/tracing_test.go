package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestKafkaHeaderCarrier_SetAndGet(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("value1")}}
	carrier := NewHeaderCarrier(&headers)

	assert.Equal(t, "value1", carrier.Get("existing"))
	assert.Empty(t, carrier.Get("missing"))

	carrier.Set("new-key", "new-value")
	carrier.Set("existing", "updated")

	assert.Equal(t, "new-value", carrier.Get("new-key"))
	assert.Equal(t, "updated", carrier.Get("existing"))
	assert.Len(t, headers, 2)
	assert.ElementsMatch(t, []string{"existing", "new-key"}, carrier.Keys())
}

func TestInjectTraceContext_WritesTraceparent(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg := kafka.Message{}
	injectTraceContext(ctx, &msg)

	carrier := NewHeaderCarrier(&msg.Headers)
	require.NotEmpty(t, carrier.Get("traceparent"))

	extracted := propagation.TraceContext{}.Extract(context.Background(), carrier)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}

func TestPublish_RecordsFailedProducerSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	p := NewProducer(DefaultProducerConfig([]string{"127.0.0.1:1"}), nil)
	defer func() { _ = p.Close() }()

	event, err := NewEvent("freshmarket.cart.updated", "sess-1", "cart", "storefront-service", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.Error(t, p.Publish(ctx, "freshmarket.cart.updated", event))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "publish freshmarket.cart.updated", spans[0].Name)
	assert.Equal(t, trace.SpanKindProducer, spans[0].SpanKind)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}
