package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// Scheduler wraps a gocron scheduler for periodic rebuild triggers.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to create scheduler").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Debug("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.logger.Debug("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// ScheduleEvery runs fn every interval. Overlapping runs are skipped.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", ferrors.ValidationError("interval must be positive").
			WithContext("interval", interval.String()).
			Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to schedule job").
			WithContext("job", name).
			Build()
	}
	return job.ID().String(), nil
}
