package resources

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type HTTPMetrics struct {
	reqs     metric.Int64Counter
	active   metric.Int64UpDownCounter
	latency  metric.Float64Histogram
	fallback string
}

func NewHTTPMetrics(name string) *HTTPMetrics {
	meter := otel.Meter(name)

	reqs, _ := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Widget and chat API requests"),
	)
	active, _ := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Requests currently being served"),
	)
	latency, _ := meter.Float64Histogram(
		"http.server.duration.ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)

	return &HTTPMetrics{reqs: reqs, active: active, latency: latency, fallback: "unmatched"}
}

// MeterMiddleware records request counts and latency per route for name's meter.
func MeterMiddleware(name string) gin.HandlerFunc {
	return NewHTTPMetrics(name).Middleware()
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.active.Add(ctx, 1)
		defer m.active.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = m.fallback
		}

		status := c.Writer.Status()

		attrs := metric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
			attribute.Int("http.status_code", status),
			attribute.String("http.status_class", strconv.Itoa(status/100)+"xx"),
		)

		m.reqs.Add(ctx, 1, attrs)
		m.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	}
}
