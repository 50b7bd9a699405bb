// Package observability sets up OpenTelemetry tracing for the search server.
// HTTP requests are traced by otelgin, service methods open their own spans,
// and the GORM plugin adds one span per query; all of them are exported over
// OTLP/gRPC by the provider installed here.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/go-search-server/internal/config"
)

// Seams replaced in tests.
var (
	newOTLPClient = otlptracegrpc.NewClient

	newExporter = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return otlptrace.New(ctx, client)
	}

	newResource = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(version),
			),
		)
	}
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(context.Context) error

// SetupOTel installs a global tracer provider and W3C propagators. When
// tracing is disabled it changes nothing and returns a no-op Shutdown. On
// error the globals are left untouched.
func SetupOTel(ctx context.Context, cfg config.OTELConfig, version string) (Shutdown, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newExporter(ctx, newOTLPClient(clientOptions(cfg)...))
	if err != nil {
		return nil, err
	}
	res, err := newResource(ctx, cfg.ServiceName, version)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

func clientOptions(cfg config.OTELConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		return append(opts, otlptracegrpc.WithInsecure())
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
}

// sampler honours an upstream decision and otherwise samples ratio of root
// traces. The bounds map to the always/never samplers.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}
