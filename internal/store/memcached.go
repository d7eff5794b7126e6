package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// maxMemcachedKey is the memcached protocol limit on key length.
const maxMemcachedKey = 250

// MemcachedStore is a Store backed by one or more memcached servers.
type MemcachedStore struct {
	client *memcache.Client
}

// NewMemcachedStore creates a memcached client for servers like "localhost:11211".
func NewMemcachedStore(timeout time.Duration, servers ...string) *MemcachedStore {
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcachedStore{client: client}
}

func (s *MemcachedStore) Name() string { return BackendMemcached }

func (s *MemcachedStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := s.client.Get(memcachedKey(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return item.Value, true, nil
}

func (s *MemcachedStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(&memcache.Item{
		Key:        memcachedKey(key),
		Value:      value,
		Expiration: memcachedExpiration(ttl),
	})
}

func (s *MemcachedStore) Ping(context.Context) error {
	return s.client.Ping()
}

func (s *MemcachedStore) Close() error { return nil }

// memcachedKey escapes spaces and control characters, which memcached rejects,
// and hashes keys that would exceed the protocol limit.
func memcachedKey(key string) string {
	k := url.QueryEscape(key)
	if len(k) <= maxMemcachedKey {
		return k
	}
	sum := sha256.Sum256([]byte(key))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// memcachedExpiration converts ttl to whole seconds, rounding sub-second
// values up so they do not become "never expires".
func memcachedExpiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	secs := int32(ttl / time.Second)
	if ttl%time.Second != 0 {
		secs++
	}
	return secs
}
