// Package metrics records lookup orchestration events as OpenTelemetry metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

// MeterName is the instrumentation scope of the lookup meter.
const MeterName = "github.com/i474232898/weather-cache-api/weather"

// Observer implements weather.Observer on top of an OpenTelemetry meter.
type Observer struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	cacheErrors   metric.Int64Counter
	fetches       metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// NewObserver creates the lookup instruments on meter.
func NewObserver(meter metric.Meter) (*Observer, error) {
	hits, err := meter.Int64Counter(
		"weather.lookup.cache_hits",
		metric.WithDescription("Lookups answered from the cache"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	misses, err := meter.Int64Counter(
		"weather.lookup.cache_misses",
		metric.WithDescription("Lookups that required a provider call"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheErrors, err := meter.Int64Counter(
		"weather.lookup.cache_errors",
		metric.WithDescription("Cache reads, decodes or writes that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter(
		"weather.lookup.fetches",
		metric.WithDescription("Provider calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"weather.lookup.fetch_duration_ms",
		metric.WithDescription("Provider call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		hits:          hits,
		misses:        misses,
		cacheErrors:   cacheErrors,
		fetches:       fetches,
		fetchDuration: fetchDuration,
	}, nil
}

// NewPrometheusProvider returns a meter provider whose readings are exposed
// on the default Prometheus registry.
func NewPrometheusProvider() (*sdkmetric.MeterProvider, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

func (o *Observer) CacheHit(ctx context.Context, _, _ string) {
	o.hits.Add(ctx, 1)
}

func (o *Observer) CacheMiss(ctx context.Context, _, _ string) {
	o.misses.Add(ctx, 1)
}

func (o *Observer) CacheReadFailed(ctx context.Context, _ string, _ error) {
	o.cacheErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "read")))
}

func (o *Observer) CacheCorrupt(ctx context.Context, _ string, _ error) {
	o.cacheErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "corrupt")))
}

func (o *Observer) FetchSucceeded(ctx context.Context, _ string, elapsed time.Duration) {
	o.recordFetch(ctx, "ok", elapsed)
}

func (o *Observer) NotFound(ctx context.Context, _ string, elapsed time.Duration) {
	o.recordFetch(ctx, "not_found", elapsed)
}

func (o *Observer) FetchFailed(ctx context.Context, _ string, elapsed time.Duration, err error) {
	outcome := "error"
	if errors.Is(err, weather.ErrConfiguration) {
		outcome = "unconfigured"
	}
	o.recordFetch(ctx, outcome, elapsed)
}

func (o *Observer) CacheWritten(context.Context, string, time.Duration) {}

func (o *Observer) CacheWriteFailed(ctx context.Context, _ string, _ error) {
	o.cacheErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "write")))
}

func (o *Observer) recordFetch(ctx context.Context, outcome string, elapsed time.Duration) {
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	o.fetches.Add(ctx, 1, opt)
	o.fetchDuration.Record(ctx, float64(elapsed.Milliseconds()), opt)
}

var _ weather.Observer = (*Observer)(nil)
