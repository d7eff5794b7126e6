package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-cache-api/internal/api/http"
	"github.com/i474232898/weather-cache-api/internal/config"
	"github.com/i474232898/weather-cache-api/internal/metrics"
	"github.com/i474232898/weather-cache-api/internal/scheduler"
	"github.com/i474232898/weather-cache-api/internal/store"
	"github.com/i474232898/weather-cache-api/internal/weather"
	"github.com/i474232898/weather-cache-api/internal/weather/providers"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("weather-api: %v", err)
	}
}

// run wires and serves the application. Deferred cleanup runs on every
// return, so a failed startup still releases the cache backend.
func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.SetLevel(parseLevel(cfg.LogLevel))

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Cache backend.
	cache, err := store.Open(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}
	defer cache.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		log.Warnw("cache backend unreachable at startup; lookups will bypass it", "backend", cache.Name(), "error", err)
	}
	cancelPing()

	// Provider with circuit breaker and optional rate limit.
	vc := providers.NewVisualCrossingProvider(httpClient, providers.VisualCrossingConfig{
		APIKey:    cfg.WeatherAPIKey,
		BaseURL:   cfg.WeatherBaseURL,
		UnitGroup: cfg.UnitGroup,
	})
	if !vc.Configured() {
		log.Warn("WEATHER_API_KEY is not set; cache misses will fail with a configuration error")
	}
	var provider weather.Provider = vc
	if cfg.ProviderRPS > 0 {
		provider = providers.NewRateLimitedProvider(vc, cfg.ProviderRPS, cfg.ProviderBurst)
	}

	// Metrics exposed on /metrics.
	meterProvider, err := metrics.NewPrometheusProvider()
	if err != nil {
		return fmt.Errorf("failed to create metrics provider: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	metricsObserver, err := metrics.NewObserver(meterProvider.Meter(metrics.MeterName))
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Core lookup service.
	opts := []weather.Option{
		weather.WithObserver(weather.MultiObserver{weather.LogObserver{}, metricsObserver}),
	}
	if cfg.CoalesceMisses {
		opts = append(opts, weather.WithMissCoalescing())
	}
	service := weather.NewService(cache, provider, opts...)

	// Scheduler that keeps configured cities warm and purges expired entries.
	sched := scheduler.New(cfg.WarmCities, cfg.WarmInterval, service)
	if purger, ok := cache.(store.Purger); ok {
		sched.WithPurger(purger, cfg.PurgeInterval)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp()
	httpapi.RegisterRoutes(app, service, cache)
	httpapi.RegisterMetrics(app, promhttp.Handler())

	go func() {
		log.Infow("listening", "port", cfg.Port, "cache", cache.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return nil
}

func parseLevel(s string) log.Level {
	switch s {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
