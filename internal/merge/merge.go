// Package merge combines a weekly schedule with a forecast data set: it
// resolves each entry's next calendar date, attaches the nearest hourly
// sample, classifies rain risk and derives summary statistics.
package merge

import (
	"time"

	"github.com/google/uuid"

	"github.com/schedcast/schedcast/internal/forecast"
	"github.com/schedcast/schedcast/internal/schedule"
)

// MatchTolerance is the maximum distance between an entry's start time and an
// hourly sample for the sample to count as a match.
const MatchTolerance = 30 * time.Minute

// Enriched is a schedule entry with its resolved date and matched forecast.
// Date and Weather are nil when the entry could not be resolved; such entries
// stay in the merge output.
type Enriched struct {
	schedule.Entry
	Date    *time.Time             `json:"date"`
	Weather *forecast.HourlySample `json:"weather"`
}

// Statistics aggregates a merged schedule. Temperature fields are nil when no
// entry carried a temperature reading.
type Statistics struct {
	AvgTemperature     *float64 `json:"avg_temperature"`
	MaxTemperature     *float64 `json:"max_temperature"`
	MinTemperature     *float64 `json:"min_temperature"`
	RainyPeriods       int      `json:"rainy_periods"`
	TotalPrecipitation float64  `json:"total_precipitation"`
}

// Severity buckets rain intensity.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLight    Severity = "light"
	SeverityModerate Severity = "moderate"
	SeverityHeavy    Severity = "heavy"
)

// ResolveDate computes the next calendar date on which the named weekday
// occurs, counting from today. A weekday equal to today's resolves to today,
// not a week ahead. Returns false for unrecognized day names.
func ResolveDate(dayName string, today time.Time) (time.Time, bool) {
	target, ok := schedule.ParseWeekday(dayName)
	if !ok {
		return time.Time{}, false
	}

	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	current := schedule.FromTime(base.Weekday())

	daysAhead := int(target) - int(current)
	if daysAhead < 0 {
		daysAhead += 7
	}

	return base.AddDate(0, 0, daysAhead), true
}

// Merge enriches every schedule entry with its resolved date and the nearest
// hourly sample within MatchTolerance of the entry's start time. Entries that
// cannot be resolved or matched degrade to nil fields rather than aborting
// the merge; partial results are always returned.
func Merge(entries []schedule.Entry, set *forecast.Set, today time.Time) []Enriched {
	enriched := make([]Enriched, 0, len(entries))

	for _, entry := range entries {
		e := Enriched{Entry: entry}

		date, ok := ResolveDate(entry.Day, today)
		if !ok {
			enriched = append(enriched, e)
			continue
		}
		e.Date = &date

		if tr, err := entry.TimeRange(); err == nil && set != nil {
			e.Weather = MatchHourly(tr.Start.At(date), set.Hourly)
		}

		enriched = append(enriched, e)
	}

	return enriched
}

// MatchHourly returns the hourly sample closest to target, or nil when no
// sample falls within MatchTolerance.
func MatchHourly(target time.Time, hourly []forecast.HourlySample) *forecast.HourlySample {
	var best *forecast.HourlySample
	bestDelta := MatchTolerance + 1

	for i := range hourly {
		delta := hourly[i].Timestamp.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta <= MatchTolerance && delta < bestDelta {
			bestDelta = delta
			best = &hourly[i]
		}
	}

	if best == nil {
		return nil
	}
	sample := *best
	return &sample
}

// rainCodes are the WMO codes for rain (61-65) and rain showers (80-82).
var (
	rainCodes     = map[int]bool{61: true, 63: true, 65: true, 80: true, 81: true, 82: true}
	heavyCodes    = map[int]bool{65: true, 82: true}
	moderateCodes = map[int]bool{63: true, 81: true}
)

// ClassifyRain decides whether a sample indicates rain and how severe it is.
// The heavy check runs before the moderate one; a sample satisfying both is
// classified heavy.
func ClassifyRain(sample *forecast.HourlySample) (bool, Severity) {
	if sample == nil {
		return false, SeverityNone
	}

	rainy := rainCodes[sample.WeatherCode] ||
		sample.Precipitation > 0 ||
		sample.PrecipProbability > 30
	if !rainy {
		return false, SeverityNone
	}

	switch {
	case sample.Precipitation > 5 || heavyCodes[sample.WeatherCode]:
		return true, SeverityHeavy
	case sample.Precipitation > 1 || moderateCodes[sample.WeatherCode]:
		return true, SeverityModerate
	default:
		return true, SeverityLight
	}
}

// ComputeStatistics aggregates temperatures, rainy periods and precipitation
// over a merged schedule. Entries without a matched sample are skipped;
// samples without a temperature are excluded from the temperature figures.
func ComputeStatistics(entries []Enriched) Statistics {
	var stats Statistics
	var temperatures []float64

	for _, e := range entries {
		if e.Weather == nil {
			continue
		}

		if e.Weather.Temperature != nil {
			temperatures = append(temperatures, *e.Weather.Temperature)
		}

		if rainy, _ := ClassifyRain(e.Weather); rainy {
			stats.RainyPeriods++
		}

		stats.TotalPrecipitation += e.Weather.Precipitation
	}

	if len(temperatures) > 0 {
		sum := 0.0
		min := temperatures[0]
		max := temperatures[0]
		for _, t := range temperatures {
			sum += t
			if t < min {
				min = t
			}
			if t > max {
				max = t
			}
		}
		avg := sum / float64(len(temperatures))
		stats.AvgTemperature = &avg
		stats.MinTemperature = &min
		stats.MaxTemperature = &max
	}

	return stats
}

// DailySummary is the whole-day outlook for one calendar date.
type DailySummary struct {
	Date               time.Time `json:"date"`
	TemperatureMax     *float64  `json:"temperature_max"`
	TemperatureMin     *float64  `json:"temperature_min"`
	PrecipitationTotal float64   `json:"precipitation_total"`
	WeatherCode        int       `json:"weather_code"`
	Description        string    `json:"description"`
}

// SummarizeDay looks up the daily sample for the given date. The first sample
// on the same calendar day wins; false when the set has no sample for it.
func SummarizeDay(date time.Time, set *forecast.Set) (DailySummary, bool) {
	if set == nil {
		return DailySummary{}, false
	}

	y, m, d := date.Date()
	for _, sample := range set.Daily {
		sy, sm, sd := sample.Date.Date()
		if sy == y && sm == m && sd == d {
			return DailySummary{
				Date:               sample.Date,
				TemperatureMax:     sample.TemperatureMax,
				TemperatureMin:     sample.TemperatureMin,
				PrecipitationTotal: sample.PrecipitationSum,
				WeatherCode:        sample.WeatherCode,
				Description:        forecast.Describe(sample.WeatherCode),
			}, true
		}
	}

	return DailySummary{}, false
}

// FilterByDateRange keeps the entries whose resolved date falls within
// [from, to]. The comparison is by calendar day, so the zone of the bounds
// does not matter. Entries without a date are dropped.
func FilterByDateRange(entries []Enriched, from, to time.Time) []Enriched {
	lo, hi := dayOrdinal(from), dayOrdinal(to)

	var out []Enriched
	for _, e := range entries {
		if e.Date == nil {
			continue
		}
		if d := dayOrdinal(*e.Date); d < lo || d > hi {
			continue
		}
		out = append(out, e)
	}
	return out
}

// dayOrdinal collapses a timestamp to a sortable calendar-day number.
func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// ForTomorrow keeps the entries resolved to the day after today.
func ForTomorrow(entries []Enriched, today time.Time) []Enriched {
	tomorrow := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).AddDate(0, 0, 1)
	return FilterByDateRange(entries, tomorrow, tomorrow)
}

// Risk flags a schedule entry with rain expected at its start time.
type Risk struct {
	ID       string                `json:"id"`
	Entry    schedule.Entry        `json:"entry"`
	Date     time.Time             `json:"date"`
	Weather  forecast.HourlySample `json:"weather"`
	Severity Severity              `json:"severity"`
}

// RainRisk returns tomorrow's entries whose matched sample shows rain:
// precipitation probability above 30% or any measured precipitation. Each
// risk gets a unique id so notification consumers can deduplicate.
func RainRisk(entries []schedule.Entry, set *forecast.Set, today time.Time) []Risk {
	if set == nil {
		return nil
	}

	var risks []Risk
	for _, e := range ForTomorrow(Merge(entries, set, today), today) {
		if e.Weather == nil {
			continue
		}
		if e.Weather.PrecipProbability <= 30 && e.Weather.Precipitation <= 0 {
			continue
		}

		_, severity := ClassifyRain(e.Weather)
		risks = append(risks, Risk{
			ID:       uuid.NewString(),
			Entry:    e.Entry,
			Date:     *e.Date,
			Weather:  *e.Weather,
			Severity: severity,
		})
	}

	return risks
}
