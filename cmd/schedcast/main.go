package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/schedcast/schedcast/internal/api/http"
	"github.com/schedcast/schedcast/internal/config"
	"github.com/schedcast/schedcast/internal/forecast"
	"github.com/schedcast/schedcast/internal/geocode"
	"github.com/schedcast/schedcast/internal/scheduler"
	"github.com/schedcast/schedcast/internal/service"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecast timestamps are interpreted in the configured timezone.
	loc := time.Local
	if cfg.Timezone != "" && cfg.Timezone != "auto" {
		if tz, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = tz
		} else {
			log.Printf("unknown timezone %q, using local time: %v", cfg.Timezone, err)
		}
	}

	// Geocoder: Google when a key is configured, Open-Meteo otherwise.
	var resolver geocode.Resolver
	if cfg.GoogleAPIKey != "" {
		resolver = geocode.NewGoogleResolver(cfg.GoogleAPIKey)
	} else {
		resolver = geocode.NewOpenMeteoResolver(httpClient)
	}

	cache := forecast.NewCache(cfg.CacheTTL)

	svc := service.New(service.Options{
		Fetcher:   forecast.NewClient(httpClient, cfg.Timezone, loc),
		Cache:     cache,
		Resolver:  resolver,
		Latitude:  cfg.Latitude,
		Longitude: cfg.Longitude,
		City:      cfg.City,
		Country:   cfg.Country,
		Days:      cfg.ForecastDays,
		Unit:      cfg.TemperatureUnit,
		CacheFile: cfg.CacheFile,
	})

	// Reuse a persisted forecast from a previous run when still fresh.
	if cfg.CacheFile != "" {
		if ok, err := cache.LoadFile(cfg.CacheFile); err != nil {
			log.Printf("could not load forecast cache file: %v", err)
		} else if ok {
			log.Println("reusing persisted forecast cache")
		}
	}

	if err := svc.LoadScheduleFile(cfg.SchedulePath); err != nil {
		log.Fatalf("failed to load schedule: %v", err)
	}
	log.Printf("loaded schedule with %d entries from %s", len(svc.Schedule()), cfg.SchedulePath)

	// Background refresh keeps the cache warm and logs rain risks.
	sched := scheduler.New(svc, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "schedcast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "schedcast",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, svc)

	// Start server with graceful shutdown
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}

	// Persist the forecast cache so a restart can reuse it.
	if cfg.CacheFile != "" {
		if err := cache.SaveFile(cfg.CacheFile); err != nil {
			log.Printf("could not persist forecast cache: %v", err)
		}
	}
}
