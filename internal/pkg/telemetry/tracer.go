// Package telemetry wires logging and OpenTelemetry tracing for the binaries.
//
//	telemetry.InitLogger("storefront")
//	shutdown, err := telemetry.SetupTracer(ctx, "storefront")
//	if err != nil { ... }
//	defer shutdown(context.Background())
package telemetry

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ShutdownFunc flushes pending spans and releases the collector connection.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// TracerConfig is the environment-derived tracing setup.
type TracerConfig struct {
	ServiceName  string
	Environment  string
	Endpoint     string // host:port of the OTLP gRPC collector
	SampleRatio  float64
	BatchTimeout time.Duration
	Disabled     bool
}

// TracerConfigFromEnv reads OTEL_EXPORTER_OTLP_ENDPOINT, DEPLOYMENT_ENV,
// OTEL_TRACES_SAMPLER_ARG and OTEL_SDK_DISABLED.
func TracerConfigFromEnv(serviceName string) TracerConfig {
	cfg := TracerConfig{
		ServiceName:  serviceName,
		Environment:  getEnv("DEPLOYMENT_ENV", "local"),
		Endpoint:     stripScheme(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
		SampleRatio:  1,
		BatchTimeout: 5 * time.Second,
		Disabled:     strings.EqualFold(os.Getenv("OTEL_SDK_DISABLED"), "true"),
	}
	if v, err := strconv.ParseFloat(os.Getenv("OTEL_TRACES_SAMPLER_ARG"), 64); err == nil && v >= 0 && v <= 1 {
		cfg.SampleRatio = v
	}
	return cfg
}

// SetupTracer configures tracing from the environment.
func SetupTracer(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	return SetupTracerWithConfig(ctx, TracerConfigFromEnv(serviceName))
}

// SetupTracerWithConfig installs W3C propagation and, unless cfg.Disabled, a
// batching TracerProvider exporting to cfg.Endpoint. Spans started by a
// remote parent follow the parent's sampling decision.
func SetupTracerWithConfig(ctx context.Context, cfg TracerConfig) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if cfg.Disabled {
		return noopShutdown, nil
	}

	conn, exporter, err := newExporter(ctx, cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	res, err := newResource(cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			_ = conn.Close()
			return fmt.Errorf("telemetry: shut down tracer provider: %w", err)
		}
		return conn.Close()
	}, nil
}

func newExporter(ctx context.Context, endpoint string) (*grpc.ClientConn, sdktrace.SpanExporter, error) {
	conn, err := grpc.NewClient(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: collector client for %s: %w", endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("telemetry: otlp exporter: %w", err)
	}
	return conn, exporter, nil
}

func newResource(cfg TracerConfig) (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		"",
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: resource: %w", err)
	}
	return res, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// stripScheme accepts collector URLs and returns host:port.
func stripScheme(endpoint string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if s, ok := strings.CutPrefix(endpoint, prefix); ok {
			return s
		}
	}
	return endpoint
}
