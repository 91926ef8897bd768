// Package tracing sets up the OpenTelemetry tracer provider. Spans flow into
// log lines through the logger adapter and into MongoDB command monitoring
// through otelmongo.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

const defaultServiceName = "sentinel"

// InitTracerProvider initializes and registers the global TracerProvider.
// The caller owns shutdown. The stdout exporter is a placeholder until an
// OTLP collector endpoint is provisioned.
func InitTracerProvider(serviceName string) (*sdktrace.TracerProvider, error) {
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}
