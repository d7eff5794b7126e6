package store

import (
	"context"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore is a file-backed Store on bbolt.
//
// Values are stored as an 8-byte big endian expiry (unix nanoseconds, zero
// for no expiry) followed by the raw value.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte

	now func() time.Time
}

// OpenBolt opens or creates a bbolt database at path.
func OpenBolt(path, bucket string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if bucket == "" {
		bucket = "weather"
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db, bucket: []byte(bucket), now: time.Now}, nil
}

func (s *BoltStore) Name() string { return BackendBolt }

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if len(v) < 8 {
			return nil
		}
		if s.expired(v) {
			return nil
		}
		found = true
		out = append([]byte(nil), v[8:]...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

// Set stores value with an absolute expiry of now+ttl; ttl <= 0 never expires.
func (s *BoltStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
}

// PurgeExpired deletes every expired entry and returns how many were removed.
func (s *BoltStore) PurgeExpired(_ context.Context) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if len(v) < 8 || s.expired(v) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *BoltStore) expired(v []byte) bool {
	expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
	return expiresAt > 0 && s.now().UnixNano() >= expiresAt
}

func (s *BoltStore) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
