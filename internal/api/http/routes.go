package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/schedcast/schedcast/internal/forecast"
	"github.com/schedcast/schedcast/internal/merge"
	"github.com/schedcast/schedcast/internal/report"
	"github.com/schedcast/schedcast/internal/schedule"
	"github.com/schedcast/schedcast/internal/service"
)

var validate = validator.New()

const dateLayout = "2006-01-02"

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *service.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/schedule", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"schedule": svc.Schedule()})
	})

	v1.Put("/schedule", func(c *fiber.Ctx) error {
		var body struct {
			Schedule []schedule.Entry `json:"schedule"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if body.Schedule == nil {
			return fiber.NewError(fiber.StatusBadRequest, `request body must contain a "schedule" key`)
		}

		entries, err := schedule.Sanitize(body.Schedule)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		svc.ReplaceSchedule(entries)
		return c.JSON(fiber.Map{"status": "ok", "entries": len(entries)})
	})

	v1.Get("/schedule/slots", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"slots": schedule.TimeSlots(svc.Schedule())})
	})

	v1.Get("/outlook", func(c *fiber.Ctx) error {
		var q outlookQuery
		if err := q.bind(c, svc.Unit()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		enriched, stats, err := svc.Outlook(c.Context(), time.Now(), q.unit)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "failed to fetch weather data")
		}

		if q.filtered {
			enriched = merge.FilterByDateRange(enriched, q.from, q.to)
		}

		rows := make([]report.Row, 0, len(enriched))
		for _, e := range enriched {
			rows = append(rows, report.FormatRow(e, q.unit))
		}

		return c.JSON(fiber.Map{
			"entries":    enriched,
			"rows":       rows,
			"statistics": stats,
		})
	})

	v1.Get("/outlook/tomorrow", func(c *fiber.Ctx) error {
		var q outlookQuery
		if err := q.bind(c, svc.Unit()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		enriched, err := svc.Tomorrow(c.Context(), time.Now(), q.unit)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "failed to fetch weather data")
		}
		return c.JSON(fiber.Map{"entries": enriched})
	})

	v1.Get("/alerts/rain", func(c *fiber.Ctx) error {
		risks, err := svc.RainAlerts(c.Context(), time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "failed to fetch weather data")
		}
		return c.JSON(fiber.Map{"alerts": risks, "count": len(risks)})
	})

	v1.Get("/summary/:date", func(c *fiber.Ctx) error {
		date, err := time.Parse(dateLayout, c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
		}

		summary, ok, err := svc.Summary(c.Context(), date)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "failed to fetch weather data")
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no daily forecast for requested date")
		}
		return c.JSON(summary)
	})

	v1.Get("/export", func(c *fiber.Ctx) error {
		var q exportQuery
		q.Format = c.Query("format", "json")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var buf bytes.Buffer
		entries := svc.Schedule()

		switch q.Format {
		case "csv":
			if err := schedule.ExportCSV(&buf, entries); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to export schedule")
			}
			c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
			c.Set(fiber.HeaderContentDisposition, `attachment; filename="schedule.csv"`)
		default:
			if err := schedule.ExportJSON(&buf, entries); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to export schedule")
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			c.Set(fiber.HeaderContentDisposition, `attachment; filename="schedule.json"`)
		}

		return c.Send(buf.Bytes())
	})

	v1.Get("/report.csv", func(c *fiber.Ctx) error {
		var q outlookQuery
		if err := q.bind(c, svc.Unit()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		enriched, stats, err := svc.Outlook(c.Context(), time.Now(), q.unit)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "failed to fetch weather data")
		}

		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, enriched, stats, q.unit); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build report")
		}

		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="weather_report.csv"`)
		return c.Send(buf.Bytes())
	})

	v1.Get("/report.json", func(c *fiber.Ctx) error {
		var q outlookQuery
		if err := q.bind(c, svc.Unit()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		enriched, stats, err := svc.Outlook(c.Context(), time.Now(), q.unit)
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "failed to fetch weather data")
		}

		var buf bytes.Buffer
		if err := report.WriteJSON(&buf, enriched, stats, q.unit); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build report")
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="weather_report.json"`)
		return c.Send(buf.Bytes())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if err := svc.Refresh(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "forecast refresh failed")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

// outlookQuery holds the query parameters shared by the outlook endpoints.
type outlookQuery struct {
	Unit string `validate:"omitempty,oneof=celsius fahrenheit"`
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`

	unit     forecast.Unit
	from, to time.Time
	filtered bool
}

func (q *outlookQuery) bind(c *fiber.Ctx, def forecast.Unit) error {
	q.Unit = c.Query("unit")
	q.From = c.Query("from")
	q.To = c.Query("to")

	if err := validate.Struct(q); err != nil {
		return err
	}

	// No explicit unit means the service's configured one, not Celsius.
	if q.Unit == "" {
		q.unit = def
	} else {
		unit, err := forecast.ParseUnit(q.Unit)
		if err != nil {
			return err
		}
		q.unit = unit
	}

	if q.From != "" && q.To != "" {
		q.from, _ = time.Parse(dateLayout, q.From)
		q.to, _ = time.Parse(dateLayout, q.To)
		if q.to.Before(q.from) {
			return fmt.Errorf("to must not be before from")
		}
		q.filtered = true
	} else if q.From != "" || q.To != "" {
		return fmt.Errorf("from and to must be supplied together")
	}

	return nil
}

type exportQuery struct {
	Format string `validate:"required,oneof=json csv"`
}
