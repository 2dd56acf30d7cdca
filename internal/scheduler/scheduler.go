package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher recomputes the derived views. It must not write to the store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(ctx context.Context) error

func (f RefreshFunc) Refresh(ctx context.Context) error { return f(ctx) }

// Scheduler periodically refreshes the views. It never fetches from the weather API.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. An interval of zero disables it.
func New(interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		slog.Info("scheduler: refresh interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	slog.Info("scheduler: started", "interval", s.interval.String())
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		slog.Warn("scheduler: refresh failed", "error", err)
		return
	}
	slog.Debug("scheduler: views refreshed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
