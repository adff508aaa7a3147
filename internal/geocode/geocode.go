// Package geocode resolves a city/country pair to coordinates for the
// forecast API. Two resolvers are available: the free Open-Meteo geocoding
// endpoint and Google's geocoding API for deployments that have a key.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kelvins/geocoder"
)

// Resolver turns a place name into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, city, country string) (lat, lon float64, err error)
}

// OpenMeteoResolver uses the keyless Open-Meteo geocoding API.
type OpenMeteoResolver struct {
	baseURL string
	client  *http.Client
}

func NewOpenMeteoResolver(client *http.Client) *OpenMeteoResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenMeteoResolver{
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		client:  client,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (r *OpenMeteoResolver) SetBaseURL(u string) {
	r.baseURL = u
}

func (r *OpenMeteoResolver) Resolve(ctx context.Context, city, country string) (float64, float64, error) {
	if city == "" {
		return 0, 0, fmt.Errorf("geocode: city is required")
	}

	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("language", "en")
	values.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", r.baseURL, values.Encode()), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("geocode bad status: %s", resp.Status)
	}

	var payload struct {
		Results []struct {
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, fmt.Errorf("geocode decode: %w", err)
	}
	if len(payload.Results) == 0 {
		return 0, 0, fmt.Errorf("geocode: no results for %q", city)
	}

	return payload.Results[0].Latitude, payload.Results[0].Longitude, nil
}

// GoogleResolver resolves locations through Google's geocoding API.
type GoogleResolver struct {
	apiKey string
}

func NewGoogleResolver(apiKey string) *GoogleResolver {
	return &GoogleResolver{apiKey: apiKey}
}

func (r *GoogleResolver) Resolve(_ context.Context, city, country string) (float64, float64, error) {
	if r.apiKey == "" {
		return 0, 0, fmt.Errorf("geocode: google api key is not configured")
	}
	geocoder.ApiKey = r.apiKey

	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    city,
		Country: country,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("geocode google: %w", err)
	}
	return loc.Latitude, loc.Longitude, nil
}
