package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type StoreMetrics struct {
	opsTotal metric.Int64Counter
	size     metric.Int64Gauge
}

func NewStoreMetrics() *StoreMetrics {
	meter := otel.Meter("schedule-planner/store")

	opsTotal, _ := meter.Int64Counter("store.operations.total")
	size, _ := meter.Int64Gauge("store.events")

	return &StoreMetrics{opsTotal: opsTotal, size: size}
}

// Observe records one store operation. hit is false for no-op updates/removals.
func (m *StoreMetrics) Observe(ctx context.Context, op string, hit bool, size int) {
	attrs := []attribute.KeyValue{
		attribute.String("store.operation", op), // ej: "add_event", "replace_all"
		attribute.Bool("store.hit", hit),
	}

	m.opsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.size.Record(ctx, int64(size))
}

type ChatMetrics struct {
	submissions metric.Int64Counter
	latency     metric.Float64Histogram
}

func NewChatMetrics() *ChatMetrics {
	meter := otel.Meter("schedule-planner/chat")

	submissions, _ := meter.Int64Counter("chat.submissions.total")
	latency, _ := meter.Float64Histogram("chat.responder.duration.ms")

	return &ChatMetrics{submissions: submissions, latency: latency}
}

func (m *ChatMetrics) Observe(ctx context.Context, outcome State, reason string, start time.Time) {
	attrs := []attribute.KeyValue{
		attribute.String("chat.outcome", outcome.String()),
		attribute.String("chat.reason", reason),
	}

	m.submissions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.latency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
}
