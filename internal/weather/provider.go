package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errNoAPIKey         = errors.New("openweather api key is not configured")
	errUnexpectedStatus = errors.New("unexpected status code")
)

// Provider abstracts the upstream forecast source. The payload is kept as a
// generic JSON object because the endpoint is a pass-through proxy.
type Provider interface {
	OneCall(ctx context.Context, lat, lon float64) (map[string]interface{}, error)
}

// OpenWeatherClient calls the OpenWeatherMap One Call API.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherClient(client *http.Client, apiKey string) *OpenWeatherClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/onecall",
		client:  client,
		circuit: cb,
	}
}

func (p *OpenWeatherClient) OneCall(ctx context.Context, lat, lon float64) (map[string]interface{}, error) {
	if p.apiKey == "" {
		return nil, errNoAPIKey
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("exclude", "minutely,alerts")
	values.Set("units", "imperial")
	values.Set("appid", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), nil)
	if err != nil {
		return nil, err
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		resp, execErr := p.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		payload := map[string]interface{}{}
		if decErr := json.NewDecoder(resp.Body).Decode(&payload); decErr != nil {
			return nil, decErr
		}
		return payload, nil
	})

	if err != nil {
		return nil, err
	}

	payload, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return payload, nil
}
