// Package service wires the schedule, the forecast client and the merge logic
// into one request/response surface. Fetching is synchronous: handlers ask for
// an outlook, the service refetches only when the cache window has lapsed.
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schedcast/schedcast/internal/forecast"
	"github.com/schedcast/schedcast/internal/geocode"
	"github.com/schedcast/schedcast/internal/merge"
	"github.com/schedcast/schedcast/internal/schedule"
)

// Fetcher is the forecast client contract the service depends on.
type Fetcher interface {
	Fetch(ctx context.Context, lat, lon float64, days int, unit forecast.Unit) (*forecast.Set, error)
}

// Options configures a Service.
type Options struct {
	Fetcher  Fetcher
	Cache    *forecast.Cache
	Resolver geocode.Resolver

	// Either coordinates or a city/country pair for the resolver.
	Latitude  float64
	Longitude float64
	City      string
	Country   string

	Days      int
	Unit      forecast.Unit
	CacheFile string
}

// Service holds the loaded schedule and the cached forecast.
type Service struct {
	mu      sync.RWMutex
	entries []schedule.Entry

	fetcher  Fetcher
	cache    *forecast.Cache
	resolver geocode.Resolver

	lat, lon float64
	located  bool
	city     string
	country  string

	days      int
	unit      forecast.Unit
	cacheFile string
}

// New creates a Service. Coordinates given directly in Options skip geocoding.
func New(opts Options) *Service {
	days := opts.Days
	if days <= 0 {
		days = 7
	}
	unit := opts.Unit
	if unit == "" {
		unit = forecast.Celsius
	}

	s := &Service{
		fetcher:   opts.Fetcher,
		cache:     opts.Cache,
		resolver:  opts.Resolver,
		lat:       opts.Latitude,
		lon:       opts.Longitude,
		city:      opts.City,
		country:   opts.Country,
		days:      days,
		unit:      unit,
		cacheFile: opts.CacheFile,
	}
	if opts.Latitude != 0 || opts.Longitude != 0 {
		s.located = true
	}
	return s
}

// LoadScheduleFile loads the schedule from a .json or .csv file.
func (s *Service) LoadScheduleFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open schedule file: %w", err)
	}
	defer f.Close()

	var entries []schedule.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entries, err = schedule.LoadJSON(f)
	case ".csv":
		entries, err = schedule.LoadCSV(f)
	default:
		return fmt.Errorf("unsupported schedule format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}

	s.ReplaceSchedule(entries)
	return nil
}

// Unit returns the unit forecasts are fetched and cached in.
func (s *Service) Unit() forecast.Unit {
	return s.unit
}

// Schedule returns a copy of the loaded schedule.
func (s *Service) Schedule() []schedule.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schedule.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ReplaceSchedule swaps in a new, already validated schedule.
func (s *Service) ReplaceSchedule(entries []schedule.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Refresh fetches a fresh forecast regardless of cache freshness and stores
// it in the cache (and the cache file when configured).
func (s *Service) Refresh(ctx context.Context) error {
	lat, lon, err := s.coordinates(ctx)
	if err != nil {
		return err
	}

	set, err := s.fetcher.Fetch(ctx, lat, lon, s.days, s.unit)
	if err != nil {
		return fmt.Errorf("fetch forecast: %w", err)
	}
	s.cache.Put(set)

	if s.cacheFile != "" {
		if err := s.cache.SaveFile(s.cacheFile); err != nil {
			log.Printf("could not persist forecast cache: %v", err)
		}
	}
	return nil
}

// Forecast returns the cached set, refetching first when it has gone stale.
func (s *Service) Forecast(ctx context.Context) (*forecast.Set, error) {
	if !s.cache.Fresh() {
		if err := s.Refresh(ctx); err != nil {
			// A stale set is still better than nothing.
			if set, _, ok := s.cache.Get(); ok {
				log.Printf("refresh failed, serving stale forecast: %v", err)
				return set, nil
			}
			return nil, err
		}
	}

	set, _, ok := s.cache.Get()
	if !ok {
		return nil, fmt.Errorf("no forecast data available")
	}
	return set, nil
}

// coordinates resolves the configured location once and remembers it.
func (s *Service) coordinates(ctx context.Context) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.located {
		return s.lat, s.lon, nil
	}
	if s.resolver == nil {
		return 0, 0, fmt.Errorf("no coordinates configured and no geocoder available")
	}

	lat, lon, err := s.resolver.Resolve(ctx, s.city, s.country)
	if err != nil {
		return 0, 0, err
	}

	s.lat, s.lon = lat, lon
	s.located = true
	log.Printf("resolved %s,%s to %.4f,%.4f", s.city, s.country, lat, lon)
	return lat, lon, nil
}

// Outlook merges the schedule with the current forecast and computes
// statistics. Temperatures are converted to the requested unit.
func (s *Service) Outlook(ctx context.Context, today time.Time, unit forecast.Unit) ([]merge.Enriched, merge.Statistics, error) {
	set, err := s.Forecast(ctx)
	if err != nil {
		return nil, merge.Statistics{}, err
	}

	enriched := merge.Merge(s.Schedule(), set, today)
	s.convert(enriched, unit)

	return enriched, merge.ComputeStatistics(enriched), nil
}

// Tomorrow returns the merged entries resolved to tomorrow's date.
func (s *Service) Tomorrow(ctx context.Context, today time.Time, unit forecast.Unit) ([]merge.Enriched, error) {
	enriched, _, err := s.Outlook(ctx, today, unit)
	if err != nil {
		return nil, err
	}
	return merge.ForTomorrow(enriched, today), nil
}

// RainAlerts returns tomorrow's rain-risk entries.
func (s *Service) RainAlerts(ctx context.Context, today time.Time) ([]merge.Risk, error) {
	set, err := s.Forecast(ctx)
	if err != nil {
		return nil, err
	}
	return merge.RainRisk(s.Schedule(), set, today), nil
}

// Summary returns the daily outlook for one calendar date.
func (s *Service) Summary(ctx context.Context, date time.Time) (merge.DailySummary, bool, error) {
	set, err := s.Forecast(ctx)
	if err != nil {
		return merge.DailySummary{}, false, err
	}
	summary, ok := merge.SummarizeDay(date, set)
	return summary, ok, nil
}

// convert rewrites sample temperatures from the fetch unit into unit.
func (s *Service) convert(entries []merge.Enriched, unit forecast.Unit) {
	if unit == "" || unit == s.unit {
		return
	}
	for i := range entries {
		w := entries[i].Weather
		if w == nil || w.Temperature == nil {
			continue
		}
		converted := forecast.ConvertTemperature(*w.Temperature, s.unit, unit)
		w.Temperature = &converted
	}
}
