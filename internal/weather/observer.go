package weather

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Observer receives a callback at each decision point of Lookup.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	CacheHit(ctx context.Context, city, key string)
	CacheMiss(ctx context.Context, city, key string)
	CacheReadFailed(ctx context.Context, key string, err error)
	CacheCorrupt(ctx context.Context, key string, err error)
	FetchSucceeded(ctx context.Context, city string, elapsed time.Duration)
	NotFound(ctx context.Context, city string, elapsed time.Duration)
	FetchFailed(ctx context.Context, city string, elapsed time.Duration, err error)
	CacheWritten(ctx context.Context, key string, ttl time.Duration)
	CacheWriteFailed(ctx context.Context, key string, err error)
}

// NopObserver ignores every event. Embed it to implement a subset of Observer.
type NopObserver struct{}

func (NopObserver) CacheHit(context.Context, string, string) {}
func (NopObserver) CacheMiss(context.Context, string, string) {}
func (NopObserver) CacheReadFailed(context.Context, string, error) {}
func (NopObserver) CacheCorrupt(context.Context, string, error) {}
func (NopObserver) FetchSucceeded(context.Context, string, time.Duration) {}
func (NopObserver) NotFound(context.Context, string, time.Duration) {}
func (NopObserver) FetchFailed(context.Context, string, time.Duration, error) {}
func (NopObserver) CacheWritten(context.Context, string, time.Duration) {}
func (NopObserver) CacheWriteFailed(context.Context, string, error) {}

// MultiObserver fans every event out to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) CacheHit(ctx context.Context, city, key string) {
	for _, o := range m {
		o.CacheHit(ctx, city, key)
	}
}

func (m MultiObserver) CacheMiss(ctx context.Context, city, key string) {
	for _, o := range m {
		o.CacheMiss(ctx, city, key)
	}
}

func (m MultiObserver) CacheReadFailed(ctx context.Context, key string, err error) {
	for _, o := range m {
		o.CacheReadFailed(ctx, key, err)
	}
}

func (m MultiObserver) CacheCorrupt(ctx context.Context, key string, err error) {
	for _, o := range m {
		o.CacheCorrupt(ctx, key, err)
	}
}

func (m MultiObserver) FetchSucceeded(ctx context.Context, city string, elapsed time.Duration) {
	for _, o := range m {
		o.FetchSucceeded(ctx, city, elapsed)
	}
}

func (m MultiObserver) NotFound(ctx context.Context, city string, elapsed time.Duration) {
	for _, o := range m {
		o.NotFound(ctx, city, elapsed)
	}
}

func (m MultiObserver) FetchFailed(ctx context.Context, city string, elapsed time.Duration, err error) {
	for _, o := range m {
		o.FetchFailed(ctx, city, elapsed, err)
	}
}

func (m MultiObserver) CacheWritten(ctx context.Context, key string, ttl time.Duration) {
	for _, o := range m {
		o.CacheWritten(ctx, key, ttl)
	}
}

func (m MultiObserver) CacheWriteFailed(ctx context.Context, key string, err error) {
	for _, o := range m {
		o.CacheWriteFailed(ctx, key, err)
	}
}

// LogObserver writes orchestration events through fiber's leveled logger.
type LogObserver struct{}

func (LogObserver) CacheHit(_ context.Context, city, key string) {
	log.Infow("returning weather from cache", "city", city, "key", key)
}

func (LogObserver) CacheMiss(_ context.Context, city, key string) {
	log.Infow("cache miss, calling provider", "city", city, "key", key)
}

func (LogObserver) CacheReadFailed(_ context.Context, key string, err error) {
	log.Warnw("cache read failed, treating as miss", "key", key, "error", err)
}

func (LogObserver) CacheCorrupt(_ context.Context, key string, err error) {
	log.Warnw("corrupt cache entry, treating as miss", "key", key, "error", err)
}

func (LogObserver) FetchSucceeded(_ context.Context, city string, elapsed time.Duration) {
	log.Infow("weather fetched", "city", city, "elapsed", elapsed)
}

func (LogObserver) NotFound(_ context.Context, city string, elapsed time.Duration) {
	log.Warnw("provider has no data for city", "city", city, "elapsed", elapsed)
}

func (LogObserver) FetchFailed(_ context.Context, city string, elapsed time.Duration, err error) {
	log.Errorw("provider fetch failed", "city", city, "elapsed", elapsed, "error", err)
}

func (LogObserver) CacheWritten(_ context.Context, key string, ttl time.Duration) {
	log.Debugw("weather cached", "key", key, "ttl", ttl)
}

func (LogObserver) CacheWriteFailed(_ context.Context, key string, err error) {
	log.Warnw("cache write failed", "key", key, "error", err)
}

var (
	_ Observer = NopObserver{}
	_ Observer = MultiObserver(nil)
	_ Observer = LogObserver{}
)
