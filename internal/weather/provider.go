package weather

import (
	"context"
	"time"
)

// Provider abstracts the remote weather data source queried on a cache miss.
//
// Fetch returns the parsed record on success, ErrCityNotFound when the provider
// has no data for the input, an error matching ErrConfiguration when the client
// is not usable, and a *ProviderError for every other failure.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Record, error)
}

// Cache is the key/value contract the lookup service relies on.
// Expired entries must be reported as absent (ok == false).
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
