package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-cache-api/internal/store"
	"github.com/i474232898/weather-cache-api/internal/weather/providers"
)

type AppConfig struct {
	// Provider credential and endpoint. An empty key is not a load error; every
	// cache miss then fails with a configuration error.
	WeatherAPIKey  string
	WeatherBaseURL string
	UnitGroup      string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// Outbound rate limit; ProviderRPS <= 0 disables it.
	ProviderRPS   float64
	ProviderBurst int

	Cache store.Options

	// CoalesceMisses shares one provider call between concurrent misses for a key.
	CoalesceMisses bool

	// Cities looked up periodically to keep the cache warm.
	WarmCities   []string
	WarmInterval time.Duration

	// PurgeInterval controls how often expired entries are removed from
	// backends that keep them on disk or in memory.
	PurgeInterval time.Duration

	LogLevel string
	Port     string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Infof("No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	cfg.WeatherBaseURL = getenvDefault("WEATHER_API_BASE_URL", providers.DefaultVisualCrossingURL)
	cfg.UnitGroup = getenvDefault("WEATHER_UNIT_GROUP", "metric")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	rps := getenvDefault("PROVIDER_RPS", "0")
	cfg.ProviderRPS, err = strconv.ParseFloat(rps, 64)
	if err != nil || cfg.ProviderRPS < 0 {
		return nil, fmt.Errorf("invalid PROVIDER_RPS: %q", rps)
	}
	if cfg.ProviderBurst, err = getenvInt("PROVIDER_BURST", 1); err != nil {
		return nil, err
	}

	cfg.Cache = store.Options{
		Backend:          strings.ToLower(getenvDefault("CACHE_BACKEND", store.BackendRedis)),
		RedisAddr:        getenvDefault("REDIS_CONNECTION_STRING", "localhost:8090"),
		MemcachedServers: splitList(getenvDefault("MEMCACHED_SERVERS", "localhost:11211")),
		BoltPath:         getenvDefault("BOLT_PATH", "weather-cache.bolt"),
		BoltBucket:       "weather",
		DialTimeout:      5 * time.Second,
	}
	switch cfg.Cache.Backend {
	case store.BackendRedis, store.BackendMemcached, store.BackendBolt, store.BackendMemory:
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND: %q", cfg.Cache.Backend)
	}

	coalesce := getenvDefault("COALESCE_MISSES", "false")
	if cfg.CoalesceMisses, err = strconv.ParseBool(coalesce); err != nil {
		return nil, fmt.Errorf("invalid COALESCE_MISSES: %w", err)
	}

	cfg.WarmCities = splitList(os.Getenv("WARM_CITIES"))
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "6h"); err != nil {
		return nil, err
	}
	if cfg.PurgeInterval, err = getenvDuration("PURGE_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// splitList splits a comma separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
