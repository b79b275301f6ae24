// Package telemetry sets up OpenTelemetry tracing for stub invocations.
package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for stub spans.
const TracerName = "github.com/tjfontaine/secretagent"

// Tracer returns the tracer for stub spans from the global provider. Until a
// provider is installed its spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Config selects how spans are exported.
type Config struct {
	ServiceName string
	// Writer receives spans as JSON. Defaults to stderr.
	Writer io.Writer
	// Pretty indents the exported JSON.
	Pretty bool
	// SampleRatio is the fraction of root spans kept. Zero keeps all.
	SampleRatio float64
}

// Init installs a global tracer provider and returns its shutdown function.
// Spans are exported synchronously as each one ends.
func Init(cfg Config, logger *slog.Logger) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("telemetry: service name is required")
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return nil, errors.New("telemetry: sample ratio must be within [0, 1]")
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	exportOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.Pretty {
		exportOpts = append(exportOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exportOpts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRatio > 0 && cfg.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		slog.String("service", cfg.ServiceName),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return tp.Shutdown, nil
}
