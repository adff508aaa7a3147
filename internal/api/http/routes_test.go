package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/schedcast/schedcast/internal/forecast"
	"github.com/schedcast/schedcast/internal/report"
	"github.com/schedcast/schedcast/internal/schedule"
	"github.com/schedcast/schedcast/internal/service"
)

type stubFetcher struct {
	set *forecast.Set
}

func (s *stubFetcher) Fetch(_ context.Context, _, _ float64, _ int, _ forecast.Unit) (*forecast.Set, error) {
	return s.set, nil
}

func testApp() *fiber.App {
	temp := 5.0
	set := &forecast.Set{
		Hourly: []forecast.HourlySample{{
			Timestamp:         time.Now().AddDate(0, 0, 1),
			Temperature:       &temp,
			PrecipProbability: 50,
			WeatherCode:       61,
		}},
	}

	svc := service.New(service.Options{
		Fetcher:  &stubFetcher{set: set},
		Cache:    forecast.NewCache(time.Hour),
		Latitude: 44.4268, Longitude: 26.1025,
		Unit: forecast.Celsius,
	})
	svc.ReplaceSchedule([]schedule.Entry{
		{Day: "Luni", Time: "08:00-10:00", Subject: "Programare", Location: "C309"},
	})

	app := fiber.New()
	RegisterRoutes(app, svc)
	return app
}

func TestGetSchedule(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Schedule []schedule.Entry `json:"schedule"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Schedule) != 1 || body.Schedule[0].Subject != "Programare" {
		t.Errorf("unexpected schedule payload: %+v", body.Schedule)
	}
}

func TestPutScheduleValidation(t *testing.T) {
	app := testApp()

	// Missing subject must be rejected.
	payload := `{"schedule": [{"day": "Luni", "time": "08:00-10:00"}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/schedule", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// An unknown weekday fails fast too.
	payload = `{"schedule": [{"day": "Funday", "time": "08:00-10:00", "subject": "x"}]}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/schedule", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// A valid replacement is accepted.
	payload = `{"schedule": [{"day": "Vineri", "time": "14:00-16:00", "subject": "Sport"}]}`
	req = httptest.NewRequest(http.MethodPut, "/api/v1/schedule", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestOutlookUnitValidation(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlook?unit=kelvin", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Lone from parameter is rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/outlook?from=2025-01-15", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestOutlookReturnsEntriesAndStatistics(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlook", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Entries []json.RawMessage `json:"entries"`
		Rows    []json.RawMessage `json:"rows"`
		Stats   json.RawMessage   `json:"statistics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entries) != 1 || len(body.Rows) != 1 {
		t.Errorf("expected 1 entry and 1 row, got %d/%d", len(body.Entries), len(body.Rows))
	}
	if body.Stats == nil {
		t.Error("expected a statistics block")
	}
}

func TestSummaryDateValidation(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary/yesterday", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// A well-formed date with no forecast data returns 404.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/summary/2030-01-01", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestExportFormats(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export?format=xml", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/export?format=csv", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	payload, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(payload), "day,time,subject,location") {
		t.Errorf("unexpected csv payload: %q", string(payload))
	}

	// Round-trip: the exported JSON loads back into equal entries.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/export?format=json", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, err := schedule.LoadJSON(resp.Body)
	if err != nil {
		t.Fatalf("reload exported schedule: %v", err)
	}
	if len(entries) != 1 || entries[0].Location != "C309" {
		t.Errorf("round-trip mismatch: %+v", entries)
	}
}

func TestReportJSONDocument(t *testing.T) {
	app := testApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report.json", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var doc struct {
		ID         string          `json:"id"`
		Rows       []report.Row    `json:"rows"`
		Statistics json.RawMessage `json:"statistics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected a report id")
	}
	if len(doc.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(doc.Rows))
	}
	if doc.Rows[0].Subject != "Programare" {
		t.Errorf("unexpected row: %+v", doc.Rows[0])
	}
}

// tomorrowApp serves one schedule entry that resolves to tomorrow, with an
// hourly sample matching its start time.
func tomorrowApp(unit forecast.Unit, temp float64) *fiber.App {
	tomorrow := time.Now().AddDate(0, 0, 1)
	set := &forecast.Set{
		Hourly: []forecast.HourlySample{{
			Timestamp:   time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 8, 0, 0, 0, time.Local),
			Temperature: &temp,
		}},
	}

	svc := service.New(service.Options{
		Fetcher:  &stubFetcher{set: set},
		Cache:    forecast.NewCache(time.Hour),
		Latitude: 44.4268, Longitude: 26.1025,
		Unit: unit,
	})
	svc.ReplaceSchedule([]schedule.Entry{
		{Day: tomorrow.Weekday().String(), Time: "08:00-10:00", Subject: "Programare"},
	})

	app := fiber.New()
	RegisterRoutes(app, svc)
	return app
}

// Entry dates resolve to midnights in the server's zone while the from/to
// bounds parse as UTC; the same calendar day must still match in any zone.
func TestOutlookDateFilterMatchesLocalDates(t *testing.T) {
	app := tomorrowApp(forecast.Celsius, 5.0)

	day := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlook?from="+day+"&to="+day, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entries) != 1 {
		t.Errorf("expected the entry for %s to pass the filter, got %d entries", day, len(body.Entries))
	}
}

func TestOutlookDefaultsToConfiguredUnit(t *testing.T) {
	app := tomorrowApp(forecast.Fahrenheit, 41.0)

	// No unit parameter: values stay in the service's fetch unit.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/outlook", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Rows []report.Row `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(body.Rows))
	}
	if body.Rows[0].Temperature != "41.0°F" {
		t.Errorf("temperature = %q; want 41.0°F", body.Rows[0].Temperature)
	}
}
