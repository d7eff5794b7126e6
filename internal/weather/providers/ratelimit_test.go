package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

type countingProvider struct {
	calls int
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Fetch(context.Context, string) (weather.Record, error) {
	c.calls++
	return weather.Record{City: "Oslo", Conditions: "Clear"}, nil
}

func TestRateLimitedProviderForwards(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 100, 2)

	for i := 0; i < 2; i++ {
		rec, err := p.Fetch(context.Background(), "Oslo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.City != "Oslo" {
			t.Fatalf("unexpected record %+v", rec)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 forwarded calls, got %d", inner.calls)
	}
	if p.Name() != "counting" {
		t.Errorf("expected wrapped name, got %q", p.Name())
	}
}

func TestRateLimitedProviderHonoursDeadline(t *testing.T) {
	inner := &countingProvider{}
	// One request every 10s; the first consumes the burst.
	p := NewRateLimitedProvider(inner, 0.1, 1)

	if _, err := p.Fetch(context.Background(), "Oslo"); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Fetch(ctx, "Oslo")
	if !errors.Is(err, weather.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected limited call not to be forwarded, got %d calls", inner.calls)
	}
}

func TestRateLimitedProviderMissingKeySkipsLimiter(t *testing.T) {
	unconfigured := NewVisualCrossingProvider(http.DefaultClient, VisualCrossingConfig{})
	// One token every 100s; every call after the first would have to wait.
	p := NewRateLimitedProvider(unconfigured, 0.01, 1)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		_, err := p.Fetch(ctx, "London")
		cancel()
		if !errors.Is(err, weather.ErrConfiguration) {
			t.Fatalf("call %d: expected ErrConfiguration, got %v", i, err)
		}
		if errors.Is(err, weather.ErrProvider) {
			t.Fatalf("call %d: missing key must not surface as a provider error", i)
		}
	}
}
