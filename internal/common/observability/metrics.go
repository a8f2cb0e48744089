package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	ingestCounter  otelmetric.Int64Counter
	ingestDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	ingestCounter, _ := meter.Int64Counter(
		"ingest.records",
		otelmetric.WithDescription("Number of records ingested"),
	)

	ingestDuration, _ := meter.Float64Histogram(
		"ingest.duration",
		otelmetric.WithDescription("Record ingest duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		ingestCounter:  ingestCounter,
		ingestDuration: ingestDuration,
	}
}

func (o *Observability) RecordIngest(ctx context.Context, kind string) {
	if o.ingestCounter != nil {
		o.ingestCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("kind", kind),
		))
	}
}

func (o *Observability) RecordIngestDuration(ctx context.Context, duration time.Duration, kind string) {
	if o.ingestDuration != nil {
		o.ingestDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("kind", kind),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
