package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

type Tracing struct {
	provider *sdktrace.TracerProvider
}

// NewTracing wires a Jaeger-exporting tracer provider. endpoint may be
// empty, in which case the exporter's default collector URL is used.
func NewTracing(serviceName, endpoint string) *Tracing {
	var opts []jaeger.CollectorEndpointOption
	if endpoint != "" {
		opts = append(opts, jaeger.WithEndpoint(endpoint))
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(opts...))
	if err != nil {
		log.Printf("Failed to create Jaeger exporter: %v", err)
		return &Tracing{}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(provider)

	return &Tracing{provider: provider}
}

func (t *Tracing) Shutdown() {
	if t.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		t.provider.Shutdown(ctx)
	}
}
