package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// Open-Meteo serves at most 16 forecast days on the free tier.
	maxForecastDays = 16

	hourlyLayout = "2006-01-02T15:04"
	dailyLayout  = "2006-01-02"
)

// Client fetches hourly and daily forecasts from Open-Meteo. The API needs no
// key; requests go through a circuit breaker with retry/backoff.
type Client struct {
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	bo       backoff
	timezone string
	location *time.Location
}

// NewClient creates an Open-Meteo client. Timestamps in the response are
// interpreted in the given timezone; loc falls back to time.Local when nil.
func NewClient(client *http.Client, timezone string, loc *time.Location) *Client {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if timezone == "" {
		timezone = "auto"
	}
	if loc == nil {
		loc = time.Local
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: defaultBaseURL,
		client:  client,
		circuit: cb,
		bo: backoff{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		timezone: timezone,
		location: loc,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type openMeteoResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hourly    struct {
		Time              []string   `json:"time"`
		Temperature       []*float64 `json:"temperature_2m"`
		PrecipProbability []*int     `json:"precipitation_probability"`
		Precipitation     []*float64 `json:"precipitation"`
		WeatherCode       []*int     `json:"weathercode"`
		WindSpeed         []*float64 `json:"windspeed_10m"`
	} `json:"hourly"`
	Daily struct {
		Time             []string   `json:"time"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
		WeatherCode      []*int     `json:"weathercode"`
	} `json:"daily"`
}

// Fetch requests the forecast for the given coordinates and number of days and
// returns hourly plus daily samples, already shaped for merging.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, days int, unit Unit) (*Set, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", lat))
		values.Set("longitude", fmt.Sprintf("%.4f", lon))
		values.Set("hourly", "temperature_2m,precipitation_probability,precipitation,weathercode,windspeed_10m")
		values.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum")
		values.Set("timezone", c.timezone)
		values.Set("forecast_days", strconv.Itoa(days))
		if unit == Fahrenheit {
			values.Set("temperature_unit", "fahrenheit")
		}

		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "schedcast/1.0")
		return req, nil
	}

	resp, err := doWithResilience(ctx, c.client, c.circuit, c.bo, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("open-meteo decode: %w", err)
	}

	return c.shape(&payload), nil
}

// shape flattens the parallel arrays of the raw payload into samples. Index
// gaps fall back to zero values, matching the upstream's sparse responses.
func (c *Client) shape(payload *openMeteoResponse) *Set {
	set := &Set{
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}

	for i, raw := range payload.Hourly.Time {
		ts, err := time.ParseInLocation(hourlyLayout, raw, c.location)
		if err != nil {
			continue
		}

		sample := HourlySample{Timestamp: ts}
		if i < len(payload.Hourly.Temperature) {
			sample.Temperature = payload.Hourly.Temperature[i]
		}
		if i < len(payload.Hourly.PrecipProbability) && payload.Hourly.PrecipProbability[i] != nil {
			sample.PrecipProbability = *payload.Hourly.PrecipProbability[i]
		}
		if i < len(payload.Hourly.Precipitation) && payload.Hourly.Precipitation[i] != nil {
			sample.Precipitation = *payload.Hourly.Precipitation[i]
		}
		if i < len(payload.Hourly.WeatherCode) && payload.Hourly.WeatherCode[i] != nil {
			sample.WeatherCode = *payload.Hourly.WeatherCode[i]
		}
		if i < len(payload.Hourly.WindSpeed) && payload.Hourly.WindSpeed[i] != nil {
			sample.WindSpeed = *payload.Hourly.WindSpeed[i]
		}
		set.Hourly = append(set.Hourly, sample)
	}

	for i, raw := range payload.Daily.Time {
		date, err := time.ParseInLocation(dailyLayout, raw, c.location)
		if err != nil {
			continue
		}

		sample := DailySample{Date: date}
		if i < len(payload.Daily.TemperatureMax) {
			sample.TemperatureMax = payload.Daily.TemperatureMax[i]
		}
		if i < len(payload.Daily.TemperatureMin) {
			sample.TemperatureMin = payload.Daily.TemperatureMin[i]
		}
		if i < len(payload.Daily.PrecipitationSum) && payload.Daily.PrecipitationSum[i] != nil {
			sample.PrecipitationSum = *payload.Daily.PrecipitationSum[i]
		}
		if i < len(payload.Daily.WeatherCode) && payload.Daily.WeatherCode[i] != nil {
			sample.WeatherCode = *payload.Daily.WeatherCode[i]
		}
		set.Daily = append(set.Daily, sample)
	}

	return set
}
