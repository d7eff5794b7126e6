package weather

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	// KeyNamespace prefixes every cache key written by the lookup service.
	KeyNamespace = "weather"

	// CacheTTL is the expiry applied to every cached record.
	CacheTTL = 12 * time.Hour
)

// ErrCorruptRecord is returned when cached bytes cannot be decoded into a complete Record.
var ErrCorruptRecord = errors.New("weather: corrupt cached record")

// Record is the normalized current-weather view for a city.
// Records are passed by value and never modified after construction.
type Record struct {
	City        string  `json:"city"`        // display name as returned by the provider
	Temperature float64 `json:"temperature"` // metric
	Humidity    float64 `json:"humidity"`    // percent
	Conditions  string  `json:"conditions"`
}

// CacheKey returns the namespaced, case-folded cache key for a city input.
func CacheKey(city string) string {
	return KeyNamespace + ":" + strings.ToLower(city)
}

// cachedRecord mirrors Record with pointer fields so missing keys can be detected.
type cachedRecord struct {
	City        *string  `json:"city"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Conditions  *string  `json:"conditions"`
}

// EncodeRecord serializes a record for storage in the cache.
func EncodeRecord(r Record) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses cached bytes. All four fields must be present.
func DecodeRecord(data []byte) (Record, error) {
	var c cachedRecord
	if err := json.Unmarshal(data, &c); err != nil {
		return Record{}, errors.Join(ErrCorruptRecord, err)
	}
	if c.City == nil || c.Temperature == nil || c.Humidity == nil || c.Conditions == nil {
		return Record{}, ErrCorruptRecord
	}
	return Record{
		City:        *c.City,
		Temperature: *c.Temperature,
		Humidity:    *c.Humidity,
		Conditions:  *c.Conditions,
	}, nil
}
