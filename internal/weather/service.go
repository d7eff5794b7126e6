package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service answers current-weather lookups cache-aside: it consults the cache
// first and, on a miss, fetches from the provider and writes the result back.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	cache    Cache
	provider Provider
	observer Observer
	ttl      time.Duration

	// flight is nil unless miss coalescing is enabled.
	flight *singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithObserver installs the observer notified at each lookup decision point.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithMissCoalescing makes concurrent misses for the same key share a single
// provider call and cache write.
func WithMissCoalescing() Option {
	return func(s *Service) {
		s.flight = &singleflight.Group{}
	}
}

// NewService creates a new Service.
func NewService(cache Cache, provider Provider, opts ...Option) *Service {
	s := &Service{
		cache:    cache,
		provider: provider,
		observer: NopObserver{},
		ttl:      CacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns the current weather for city.
//
// The result is one of: (record, true, nil) when data is available,
// (Record{}, false, nil) when the provider has no data for the city, or
// (Record{}, false, err) where err matches ErrConfiguration or ErrProvider.
// With miss coalescing a caller whose ctx ends first gets ctx.Err() wrapped.
// The city is expected to be validated by the caller.
func (s *Service) Lookup(ctx context.Context, city string) (Record, bool, error) {
	key := CacheKey(city)

	if rec, ok := s.fromCache(ctx, city, key); ok {
		return rec, true, nil
	}
	s.observer.CacheMiss(ctx, city, key)

	if s.flight == nil {
		return s.fetchAndStore(ctx, city, key)
	}

	// The shared fetch outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := s.flight.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), coalescedFetchTimeout)
		defer cancel()
		rec, found, err := s.fetchAndStore(fetchCtx, city, key)
		return fetchResult{record: rec, found: found}, err
	})
	select {
	case <-ctx.Done():
		return Record{}, false, fmt.Errorf("lookup %q: %w", city, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return Record{}, false, r.Err
		}
		res := r.Val.(fetchResult)
		return res.record, res.found, nil
	}
}

// coalescedFetchTimeout bounds a shared fetch, which no caller can cancel.
const coalescedFetchTimeout = 30 * time.Second

type fetchResult struct {
	record Record
	found  bool
}

// fromCache reports a hit only for a present, decodable entry. Read errors
// and corrupt values are treated as misses.
func (s *Service) fromCache(ctx context.Context, city, key string) (Record, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.observer.CacheReadFailed(ctx, key, err)
		return Record{}, false
	}
	if !ok || len(data) == 0 {
		return Record{}, false
	}

	rec, err := DecodeRecord(data)
	if err != nil {
		s.observer.CacheCorrupt(ctx, key, err)
		return Record{}, false
	}

	s.observer.CacheHit(ctx, city, key)
	return rec, true
}

func (s *Service) fetchAndStore(ctx context.Context, city, key string) (Record, bool, error) {
	start := time.Now()
	rec, err := s.provider.Fetch(ctx, city)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrCityNotFound):
		s.observer.NotFound(ctx, city, elapsed)
		return Record{}, false, nil
	case err != nil:
		s.observer.FetchFailed(ctx, city, elapsed, err)
		return Record{}, false, fmt.Errorf("lookup %q: %w", city, err)
	}
	s.observer.FetchSucceeded(ctx, city, elapsed)

	s.store(ctx, key, rec)
	return rec, true, nil
}

// store writes rec best-effort; failures are reported to the observer only.
func (s *Service) store(ctx context.Context, key string, rec Record) {
	data, err := EncodeRecord(rec)
	if err != nil {
		s.observer.CacheWriteFailed(ctx, key, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.observer.CacheWriteFailed(ctx, key, err)
		return
	}
	s.observer.CacheWritten(ctx, key, s.ttl)
}
