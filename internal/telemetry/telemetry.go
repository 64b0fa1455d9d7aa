// Package telemetry installs the process-wide OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.30.0"

	"github.com/okian/callqa/pkg/logger"
)

// Exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Options configures Setup.
type Options struct {
	Exporter     string
	ServiceName  string
	Version      string
	OTLPEndpoint string
	OTLPInsecure bool
	// Output receives stdout-exporter spans. Defaults to os.Stdout.
	Output io.Writer
}

// ShutdownFunc flushes and stops the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup builds a tracer provider for the chosen exporter and registers it
// globally. With ExporterNone the global no-op provider is left in place.
func Setup(ctx context.Context, opts Options, log logger.Logger) (ShutdownFunc, error) {
	exporter := strings.ToLower(strings.TrimSpace(opts.Exporter))
	if exporter == "" || exporter == ExporterNone {
		log.Debug(ctx, "tracing disabled")
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.Version),
			attribute.String("service.component", "pipeline"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	var spanExporter sdktrace.SpanExporter
	switch exporter {
	case ExporterOTLP:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.OTLPEndpoint)}
		if opts.OTLPInsecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		spanExporter, err = otlptracegrpc.New(ctx, grpcOpts...)
	case ExporterStdout:
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(out))
	default:
		return nil, fmt.Errorf("telemetry: unknown exporter %q", opts.Exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("telemetry exporter %s: %w", exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info(ctx, "telemetry initialized",
		logger.String("exporter", exporter),
		logger.String("endpoint", opts.OTLPEndpoint))
	return tp.Shutdown, nil
}
