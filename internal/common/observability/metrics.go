package observability

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability publishes batch-level pipeline counters through the otel
// meter, exported via the shared Prometheus registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	restaurants   otelmetric.Int64Counter
	batchDuration otelmetric.Float64Histogram
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

	restaurants, _ := meter.Int64Counter(
		"restaurants.processed",
		otelmetric.WithDescription("Number of restaurants processed"),
	)

	batchDuration, _ := meter.Float64Histogram(
		"batch.duration",
		otelmetric.WithDescription("Batch pipeline run duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		restaurants:   restaurants,
		batchDuration: batchDuration,
	}
}

// RecordRestaurantProcessed counts one finished restaurant run by status.
func (o *Observability) RecordRestaurantProcessed(ctx context.Context, status string) {
	if o.restaurants != nil {
		o.restaurants.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

// RecordBatchDuration records one whole driver run.
func (o *Observability) RecordBatchDuration(ctx context.Context, millis float64, restaurants int) {
	if o.batchDuration != nil {
		o.batchDuration.Record(ctx, millis, otelmetric.WithAttributes(
			attribute.Int("restaurants", restaurants),
		))
	}
}

// Shutdown flushes the meter provider.
func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(context.Background())
	}
}
