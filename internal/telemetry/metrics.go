// Package telemetry wires the OpenTelemetry meter provider that the
// otel metrics exporter records into.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultInterval is used when Config.Interval is zero.
const DefaultInterval = time.Minute

// Config selects where and how often metrics are pushed.
type Config struct {
	ServiceName string
	// Endpoint is an OTLP/HTTP URL such as http://collector:4318/v1/metrics.
	// Empty disables export.
	Endpoint string
	Interval time.Duration
}

// Setup returns a meter provider that pushes to cfg.Endpoint on a
// periodic reader. With no endpoint it returns a nil provider and a no-op
// shutdown; callers skip OTel instrumentation in that case.
//
// The shutdown function flushes the final collection and should be deferred.
func Setup(ctx context.Context, cfg Config) (*metric.MeterProvider, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if cfg.Endpoint == "" {
		return nil, noop, nil
	}
	if cfg.Interval < 0 {
		return nil, noop, errors.New("telemetry interval must not be negative")
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultInterval
	}

	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	if err != nil {
		return nil, noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, noop, err
	}

	provider := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
		metric.WithResource(res),
	)
	return provider, provider.Shutdown, nil
}
