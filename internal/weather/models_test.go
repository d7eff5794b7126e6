package weather

import (
	"errors"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	in := Record{City: "São Paulo", Temperature: -3.25, Humidity: 0, Conditions: "Rain, Partially cloudy"}

	data, err := EncodeRecord(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeRecord(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestDecodeRecordRejectsIncompleteValues(t *testing.T) {
	tests := map[string]string{
		"empty object":     `{}`,
		"missing city":     `{"temperature":1,"humidity":2,"conditions":"Clear"}`,
		"missing humidity": `{"city":"Oslo","temperature":1,"conditions":"Clear"}`,
		"null field":       `{"city":"Oslo","temperature":null,"humidity":2,"conditions":"Clear"}`,
		"truncated":        `{"city":"Os`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeRecord([]byte(raw)); !errors.Is(err, ErrCorruptRecord) {
				t.Fatalf("expected ErrCorruptRecord, got %v", err)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"London", "weather:london"},
		{"NEW YORK", "weather:new york"},
		{"weather:paris", "weather:weather:paris"},
	}
	for _, tt := range tests {
		if got := CacheKey(tt.in); got != tt.want {
			t.Errorf("CacheKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
