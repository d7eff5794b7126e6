package store

import (
	"context"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Set(ctx, "weather:oslo", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "weather:oslo")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(got) != "value" {
		t.Fatalf("expected %q, got %q", "value", got)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore()

	got, ok, err := s.Get(context.Background(), "weather:nowhere")
	if err != nil || ok || got != nil {
		t.Fatalf("expected clean miss, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore()
	s.now = clock.now
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), 12*time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.advance(12*time.Hour - time.Second)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.advance(time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("entry should be absent at expiry")
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry should be removed on read, len=%d", s.Len())
	}
}

func TestMemoryStoreIsolatesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	in := []byte("abc")
	_ = s.Set(ctx, "k", in, time.Hour)
	in[0] = 'x'

	out, _, _ := s.Get(ctx, "k")
	if string(out) != "abc" {
		t.Fatalf("stored value changed through caller slice: %q", out)
	}
	out[0] = 'y'

	again, _, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value changed through returned slice: %q", again)
	}
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore()
	s.now = clock.now
	ctx := context.Background()

	_ = s.Set(ctx, "short", []byte("1"), time.Minute)
	_ = s.Set(ctx, "long", []byte("2"), time.Hour)
	_ = s.Set(ctx, "forever", []byte("3"), 0)

	clock.advance(2 * time.Minute)
	n, err := s.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 remaining entries, got %d", s.Len())
	}
}
