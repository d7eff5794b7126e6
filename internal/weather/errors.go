package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrCityNotFound is returned by a Provider that has no data for a city.
	// The lookup service turns it into an absent result, not an error.
	ErrCityNotFound = errors.New("weather: city not found")

	// ErrConfiguration marks deployment problems such as a missing credential.
	ErrConfiguration = errors.New("weather: provider not configured")

	// ErrMissingAPIKey is returned before any request is sent when no key is set.
	ErrMissingAPIKey = fmt.Errorf("%w: missing api key", ErrConfiguration)

	// ErrProvider is matched by every *ProviderError.
	ErrProvider = errors.New("weather: provider failure")

	// ErrMalformedResponse is wrapped by a ProviderError when a success body
	// lacks one of the required fields.
	ErrMalformedResponse = errors.New("weather: malformed provider response")

	// ErrCircuitOpen is wrapped by a ProviderError when the breaker rejects a call.
	ErrCircuitOpen = errors.New("weather: circuit breaker open")
)

// ProviderError describes a failed provider call: a transport error, a
// non-success status other than 404, or an unusable success body.
type ProviderError struct {
	Provider   string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrProvider) match any ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}
