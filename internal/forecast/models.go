package forecast

import "time"

// HourlySample is one hourly forecast record. Temperature is a pointer because
// the upstream API reports null for hours it has no reading for.
type HourlySample struct {
	Timestamp         time.Time `json:"datetime"`
	Temperature       *float64  `json:"temperature"`
	PrecipProbability int       `json:"precipitation_probability"`
	Precipitation     float64   `json:"precipitation"`
	WeatherCode       int       `json:"weather_code"`
	WindSpeed         float64   `json:"wind_speed"`
}

// DailySample is one whole-day forecast record.
type DailySample struct {
	Date             time.Time `json:"date"`
	TemperatureMax   *float64  `json:"temperature_max"`
	TemperatureMin   *float64  `json:"temperature_min"`
	PrecipitationSum float64   `json:"precipitation_sum"`
	WeatherCode      int       `json:"weather_code"`
}

// Set is a full forecast data set for one location.
type Set struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Hourly    []HourlySample `json:"hourly"`
	Daily     []DailySample  `json:"daily"`
}

// wmoDescriptions maps WMO weather codes to display text.
// Codes per https://open-meteo.com/en/docs
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Light rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Light snowfall",
	73: "Moderate snowfall",
	75: "Heavy snowfall",
	77: "Snow grains",
	80: "Light rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Light snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with light hail",
	99: "Thunderstorm with heavy hail",
}

// Describe converts a WMO weather code to display text.
func Describe(code int) string {
	if desc, ok := wmoDescriptions[code]; ok {
		return desc
	}
	return "Unknown"
}
