package resources

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Closable interface {
	Close()
}

type ClosableFunc func()

func (f ClosableFunc) Close() { f() }

// CreateTelemetry exports traces, metrics and logs over OTLP/gRPC to
// cfg.OtelEndpoint and installs the providers globally. The returned function
// flushes and shuts down all three.
func CreateTelemetry(ctx context.Context, cfg *Config) (func(context.Context) error, error) {
	traceExp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return noopShutdown, fmt.Errorf("failed to create the OTLP trace exporter: %w", err)
	}

	metricExp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OtelEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return noopShutdown, errors.Join(fmt.Errorf("failed to create the OTLP metric exporter: %w", err), traceExp.Shutdown(ctx))
	}

	logExp, err := otlploggrpc.New(ctx,
		otlploggrpc.WithEndpoint(cfg.OtelEndpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return noopShutdown, errors.Join(fmt.Errorf("failed to create the OTLP log exporter: %w", err), traceExp.Shutdown(ctx), metricExp.Shutdown(ctx))
	}

	return InstallTelemetry(NewResource(cfg),
		sdktrace.NewBatchSpanProcessor(traceExp),
		sdkmetric.NewPeriodicReader(metricExp),
		sdklog.NewBatchProcessor(logExp),
	), nil
}

// InstallTelemetry sets the global tracer, meter and logger providers built on
// the given pipeline ends, plus the W3C propagators.
func InstallTelemetry(res *resource.Resource, spans sdktrace.SpanProcessor, metrics sdkmetric.Reader, logs sdklog.Processor) func(context.Context) error {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res), sdktrace.WithSpanProcessor(spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(metrics))
	lp := sdklog.NewLoggerProvider(sdklog.WithResource(res), sdklog.WithProcessor(logs))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	global.SetLoggerProvider(lp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx), lp.Shutdown(ctx))
	}
}

func NewResource(cfg *Config) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String("service.name", cfg.Name),
		attribute.String("service.version", cfg.Version),
		attribute.String("deployment.environment", cfg.Env),
	)
}

func noopShutdown(context.Context) error { return nil }

// CreateResponderClient builds the HTTP client used for the responder. A zero
// timeout leaves the transport defaults in charge.
func CreateResponderClient(cfg *Config) *http.Client {
	return &http.Client{
		Timeout:   cfg.ResponderTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
