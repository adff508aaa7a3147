package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/schedcast/schedcast/internal/service"
)

// Scheduler periodically refreshes the forecast cache and logs upcoming rain
// risks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *service.Service
	interval  time.Duration
}

// New creates a Scheduler around the given service.
func New(svc *service.Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		service:   svc,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: refreshing forecast")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.service.Refresh(ctx); err != nil {
			log.Printf("scheduler: forecast refresh failed: %v", err)
			return
		}

		risks, err := s.service.RainAlerts(ctx, time.Now())
		if err != nil {
			log.Printf("scheduler: rain risk check failed: %v", err)
			return
		}
		for _, r := range risks {
			log.Printf("scheduler: rain risk tomorrow (%s): %s %s, severity %s",
				r.Date.Format("2006-01-02"), r.Entry.Subject, r.Entry.Time, r.Severity)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
