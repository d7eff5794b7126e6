// Package store provides the cache backends used by the weather lookup service.
// Every backend satisfies weather.Cache: Get reports absent or expired keys with
// ok == false and Set writes a value with a time-to-live.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

// Backend names accepted by Open.
const (
	BackendRedis     = "redis"
	BackendMemcached = "memcached"
	BackendBolt      = "bolt"
	BackendMemory    = "memory"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("store: unknown cache backend")

// Store is a weather.Cache that can be health-checked and closed.
type Store interface {
	weather.Cache
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Purger is implemented by backends that hold expired entries until removed.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	RedisAddr        string   // host:port or redis:// URL
	MemcachedServers []string // host:port list
	BoltPath         string
	BoltBucket       string

	DialTimeout time.Duration
}

// Open creates the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendRedis:
		return NewRedisStore(opts.RedisAddr, opts.DialTimeout)
	case BackendMemcached:
		return NewMemcachedStore(opts.DialTimeout, opts.MemcachedServers...), nil
	case BackendBolt:
		return OpenBolt(opts.BoltPath, opts.BoltBucket)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemcachedStore)(nil)
	_ Store = (*BoltStore)(nil)

	_ Purger = (*MemoryStore)(nil)
	_ Purger = (*BoltStore)(nil)
)
