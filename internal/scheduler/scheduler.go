// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SessionCleaner removes expired sessions
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler wraps a gocron scheduler with the service's jobs
type Scheduler struct {
	sched  gocron.Scheduler
	logger *slog.Logger
}

// New creates a stopped scheduler
func New(logger *slog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{sched: sched, logger: logger}, nil
}

// AddSessionCleanup sweeps expired sessions every interval
func (s *Scheduler) AddSessionCleanup(cleaner SessionCleaner, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("session cleanup interval must be positive, got %s", interval)
	}

	_, err := s.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			n, err := cleaner.CleanupExpiredSessions(ctx)
			if err != nil {
				s.logger.Error("session cleanup failed", "error", err)
				return
			}
			s.logger.Debug("session cleanup finished", "removed", n)
		}),
		gocron.WithName("session-cleanup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	s.logger.Info("session cleanup scheduled", "interval", interval.String())
	return nil
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Stop waits for running jobs and shuts the scheduler down
func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
