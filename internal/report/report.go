// Package report formats merged schedule/weather data for presentation:
// display rows for tables and CSV/JSON report files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/schedcast/schedcast/internal/forecast"
	"github.com/schedcast/schedcast/internal/merge"
)

// Row holds the display strings for one table row. Missing weather data shows
// as "-" placeholders.
type Row struct {
	Day           string `json:"day"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Subject       string `json:"subject"`
	Location      string `json:"location"`
	Temperature   string `json:"temperature"`
	Conditions    string `json:"conditions"`
	Precipitation string `json:"precipitation"`
	Wind          string `json:"wind"`
}

// FormatRow renders an enriched entry for table display. The unit labels the
// temperature cell; values are expected to already be in that unit.
func FormatRow(e merge.Enriched, unit forecast.Unit) Row {
	row := Row{
		Day:           e.Day,
		Time:          e.Time,
		Subject:       e.Subject,
		Location:      e.Location,
		Temperature:   "-",
		Conditions:    "-",
		Precipitation: "-",
		Wind:          "-",
	}

	if e.Date != nil {
		row.Date = e.Date.Format("2006-01-02")
	}

	w := e.Weather
	if w == nil {
		return row
	}

	if w.Temperature != nil {
		row.Temperature = fmt.Sprintf("%.1f%s", *w.Temperature, unit.Symbol())
	}
	row.Conditions = forecast.Describe(w.WeatherCode)

	if w.Precipitation > 0 {
		row.Precipitation = fmt.Sprintf("%d%% (%.1fmm)", w.PrecipProbability, w.Precipitation)
	} else {
		row.Precipitation = fmt.Sprintf("%d%%", w.PrecipProbability)
	}

	if w.WindSpeed > 0 {
		row.Wind = fmt.Sprintf("%.1f km/h", w.WindSpeed)
	}

	return row
}

func csvHeader(unit forecast.Unit) []string {
	return []string{
		"Day", "Date", "Time Slot", "Subject", "Location",
		fmt.Sprintf("Temperature (%s)", unit.Symbol()), "Conditions",
		"Precipitation Probability (%)", "Precipitation (mm)", "Wind Speed (km/h)",
	}
}

// WriteCSV writes the full merged report, one row per entry plus a trailing
// statistics block. Entries without weather data get blank weather columns.
func WriteCSV(w io.Writer, entries []merge.Enriched, stats merge.Statistics, unit forecast.Unit) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader(unit)); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, e := range entries {
		record := []string{e.Day, "", e.Time, e.Subject, e.Location, "", "", "", "", ""}
		if e.Date != nil {
			record[1] = e.Date.Format("2006-01-02")
		}
		if s := e.Weather; s != nil {
			if s.Temperature != nil {
				record[5] = strconv.FormatFloat(*s.Temperature, 'f', 1, 64)
			}
			record[6] = forecast.Describe(s.WeatherCode)
			record[7] = strconv.Itoa(s.PrecipProbability)
			record[8] = strconv.FormatFloat(s.Precipitation, 'f', 1, 64)
			record[9] = strconv.FormatFloat(s.WindSpeed, 'f', 1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	if err := writer.Write([]string{}); err == nil {
		summary := []string{"Rainy periods", strconv.Itoa(stats.RainyPeriods),
			"Total precipitation (mm)", strconv.FormatFloat(stats.TotalPrecipitation, 'f', 1, 64)}
		if stats.AvgTemperature != nil {
			summary = append(summary, "Average temperature", strconv.FormatFloat(*stats.AvgTemperature, 'f', 1, 64))
		}
		if err := writer.Write(summary); err != nil {
			return fmt.Errorf("write report summary: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Document is the JSON report envelope.
type Document struct {
	ID          string           `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Unit        forecast.Unit    `json:"temperature_unit"`
	Entries     []merge.Enriched `json:"entries"`
	Rows        []Row            `json:"rows"`
	Statistics  merge.Statistics `json:"statistics"`
}

// NewDocument builds a report document with a fresh id and timestamp.
func NewDocument(entries []merge.Enriched, stats merge.Statistics, unit forecast.Unit) Document {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, FormatRow(e, unit))
	}
	return Document{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		Unit:        unit,
		Entries:     entries,
		Rows:        rows,
		Statistics:  stats,
	}
}

// WriteJSON writes the full merged report as an indented JSON document.
func WriteJSON(w io.Writer, entries []merge.Enriched, stats merge.Statistics, unit forecast.Unit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(entries, stats, unit)); err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}
	return nil
}
