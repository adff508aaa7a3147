package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/schedcast/schedcast/internal/forecast"
)

// AppConfig holds the service configuration.
type AppConfig struct {
	// SchedulePath points at the weekly schedule file (.json or .csv).
	SchedulePath string

	// Location: explicit coordinates win over city/country geocoding.
	Latitude  float64
	Longitude float64
	City      string
	Country   string

	// Timezone used for forecast timestamps, e.g. "Europe/Bucharest".
	Timezone string

	TemperatureUnit forecast.Unit
	ForecastDays    int

	// CacheTTL is the forecast validity window; RefreshInterval drives the
	// background refetch job.
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	CacheFile       string

	// GoogleAPIKey switches geocoding to Google when set.
	GoogleAPIKey string

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.SchedulePath = getenvDefault("SCHEDULE_FILE", "schedule.json")

	var err error
	cfg.Latitude, err = getenvFloat("LOCATION_LATITUDE", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_LATITUDE: %w", err)
	}
	cfg.Longitude, err = getenvFloat("LOCATION_LONGITUDE", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_LONGITUDE: %w", err)
	}
	cfg.City = os.Getenv("LOCATION_CITY")
	cfg.Country = os.Getenv("LOCATION_COUNTRY")

	if cfg.Latitude == 0 && cfg.Longitude == 0 && cfg.City == "" {
		return nil, fmt.Errorf("either LOCATION_LATITUDE/LOCATION_LONGITUDE or LOCATION_CITY must be set")
	}

	cfg.Timezone = getenvDefault("FORECAST_TIMEZONE", "auto")

	cfg.TemperatureUnit, err = forecast.ParseUnit(getenvDefault("TEMPERATURE_UNIT", "celsius"))
	if err != nil {
		return nil, fmt.Errorf("invalid TEMPERATURE_UNIT: %w", err)
	}

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", 7)

	cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "30m")
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "30m")
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.CacheFile = getenvDefault("CACHE_FILE", "weather_cache.json")

	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
