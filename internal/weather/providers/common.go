package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

// maxBodyBytes bounds how much of a provider response is decoded.
const maxBodyBytes = 8 << 20

var errNoHTTPClient = errors.New("http client not configured")

// statusError carries a status code the circuit breaker counts as a failure.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.code)
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// doRequest sends req once through the circuit breaker. Transport errors,
// 429 and 5xx responses trip the breaker; every other response, 404 included,
// is returned to the caller for classification.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", weather.ErrCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// providerError converts a request failure into a *weather.ProviderError.
// URL errors are unwrapped so the request URL, which carries the API key,
// never ends up in an error message.
func providerError(name string, err error) *weather.ProviderError {
	var se *statusError
	if errors.As(err, &se) {
		return &weather.ProviderError{Provider: name, StatusCode: se.code, Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		err = fmt.Errorf("%s request failed: %w", ue.Op, ue.Err)
	}
	return &weather.ProviderError{Provider: name, Err: err}
}
