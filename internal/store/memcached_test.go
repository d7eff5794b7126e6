package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestMemcachedKey(t *testing.T) {
	if got := memcachedKey("weather:new york"); got != "weather%3Anew+york" {
		t.Errorf("unexpected key %q", got)
	}
	if memcachedKey("weather:oslo") != memcachedKey("weather:oslo") {
		t.Errorf("key must be deterministic")
	}

	long := "weather:" + strings.Repeat("ü", 50)
	got := memcachedKey(long)
	if len(got) > maxMemcachedKey {
		t.Fatalf("key exceeds memcached limit: %d", len(got))
	}
	if !strings.HasPrefix(got, "sha256:") {
		t.Errorf("expected hashed key, got %q", got)
	}
	if strings.ContainsAny(got, " \n\r\t") {
		t.Errorf("key contains whitespace: %q", got)
	}
}

func TestMemcachedExpiration(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 0},
		{-time.Second, 0},
		{500 * time.Millisecond, 1},
		{12 * time.Hour, 43200},
		{1500 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		if got := memcachedExpiration(tt.ttl); got != tt.want {
			t.Errorf("memcachedExpiration(%s) = %d, want %d", tt.ttl, got, tt.want)
		}
	}
}

// TestMemcachedStoreRoundTrip needs a memcached server at MEMCACHED_TEST_ADDR
// (default localhost:11211) and is skipped without one.
func TestMemcachedStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("MEMCACHED_TEST_ADDR")
	if addr == "" {
		addr = "localhost:11211"
	}
	s := NewMemcachedStore(200*time.Millisecond, addr)
	defer s.Close()

	ctx := context.Background()
	if err := s.Ping(ctx); err != nil {
		t.Skipf("memcached not reachable at %s: %v", addr, err)
	}

	key := fmt.Sprintf("weather:new york %d", time.Now().UnixNano())

	if v, ok, err := s.Get(ctx, key); err != nil || ok || v != nil {
		t.Fatalf("expected absent, got ok=%v value=%q err=%v", ok, v, err)
	}

	value := []byte(`{"city":"New York","temperature":21,"humidity":40,"conditions":"Clear"}`)
	if err := s.Set(ctx, key, value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("expected %q, got %q", value, got)
	}
}
