package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

// RateLimitedProvider wraps a weather.Provider with an outbound rate limit.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider allows at most rps requests per second (fractional
// values allowed) with the given burst.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// configurable is implemented by providers that can report a missing credential.
type configurable interface {
	Configured() bool
}

// Fetch waits for limiter permission, then forwards to the wrapped provider.
// An unconfigured provider is called directly so its configuration error is
// never replaced by a limiter timeout.
func (r *RateLimitedProvider) Fetch(ctx context.Context, city string) (weather.Record, error) {
	if c, ok := r.provider.(configurable); ok && !c.Configured() {
		return r.provider.Fetch(ctx, city)
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return weather.Record{}, &weather.ProviderError{
			Provider: r.provider.Name(),
			Err:      fmt.Errorf("rate limit wait canceled: %w", err),
		}
	}
	return r.provider.Fetch(ctx, city)
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
