package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-cache-api/internal/weather"
)

// DefaultVisualCrossingURL is the Visual Crossing timeline endpoint.
const DefaultVisualCrossingURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// VisualCrossingConfig holds the endpoint and credential for the provider.
type VisualCrossingConfig struct {
	APIKey    string
	BaseURL   string // defaults to DefaultVisualCrossingURL
	UnitGroup string // defaults to "metric"
}

// VisualCrossingProvider implements the weather.Provider interface for the
// Visual Crossing timeline API.
type VisualCrossingProvider struct {
	name      string
	apiKey    string
	baseURL   string
	unitGroup string
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
}

func NewVisualCrossingProvider(client *http.Client, cfg VisualCrossingConfig) *VisualCrossingProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultVisualCrossingURL
	}
	unitGroup := cfg.UnitGroup
	if unitGroup == "" {
		unitGroup = "metric"
	}

	return &VisualCrossingProvider{
		name:      "visualcrossing",
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		unitGroup: unitGroup,
		client:    client,
		circuit:   newCircuitBreaker("visualcrossing"),
	}
}

func (p *VisualCrossingProvider) Name() string {
	return p.name
}

// Configured reports whether an API key is set.
func (p *VisualCrossingProvider) Configured() bool {
	return p.apiKey != ""
}

func (p *VisualCrossingProvider) Fetch(ctx context.Context, city string) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, weather.ErrMissingAPIKey
	}

	req, err := http.NewRequest(http.MethodGet, p.requestURL(city), nil)
	if err != nil {
		return weather.Record{}, providerError(p.name, err)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Record{}, providerError(p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return weather.Record{}, weather.ErrCityNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return weather.Record{}, providerError(p.name, &statusError{code: resp.StatusCode})
	}

	rec, err := parseVisualCrossing(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return weather.Record{}, &weather.ProviderError{Provider: p.name, StatusCode: resp.StatusCode, Err: err}
	}
	return rec, nil
}

func (p *VisualCrossingProvider) requestURL(city string) string {
	values := url.Values{}
	values.Set("unitGroup", p.unitGroup)
	values.Set("key", p.apiKey)
	values.Set("contentType", "json")

	return fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(city), values.Encode())
}

// parseVisualCrossing extracts the four record fields from a timeline body.
// Every field is required.
func parseVisualCrossing(r io.Reader) (weather.Record, error) {
	var payload struct {
		Address           *string `json:"address"`
		CurrentConditions *struct {
			Temp       *float64 `json:"temp"`
			Humidity   *float64 `json:"humidity"`
			Conditions *string  `json:"conditions"`
		} `json:"currentConditions"`
	}

	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return weather.Record{}, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}

	cc := payload.CurrentConditions
	switch {
	case payload.Address == nil:
		return weather.Record{}, fmt.Errorf("%w: missing address", weather.ErrMalformedResponse)
	case cc == nil:
		return weather.Record{}, fmt.Errorf("%w: missing currentConditions", weather.ErrMalformedResponse)
	case cc.Temp == nil:
		return weather.Record{}, fmt.Errorf("%w: missing currentConditions.temp", weather.ErrMalformedResponse)
	case cc.Humidity == nil:
		return weather.Record{}, fmt.Errorf("%w: missing currentConditions.humidity", weather.ErrMalformedResponse)
	case cc.Conditions == nil:
		return weather.Record{}, fmt.Errorf("%w: missing currentConditions.conditions", weather.ErrMalformedResponse)
	}

	return weather.Record{
		City:        *payload.Address,
		Temperature: *cc.Temp,
		Humidity:    *cc.Humidity,
		Conditions:  *cc.Conditions,
	}, nil
}

var _ weather.Provider = (*VisualCrossingProvider)(nil)
