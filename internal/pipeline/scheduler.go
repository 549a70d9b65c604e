package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/couchcryptid/precip-maps/internal/observability"
)

// Runner is a job the scheduler triggers.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler triggers a Runner on a cron expression until its context ends.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	runner  Runner
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@daily") in loc. Ticks that arrive while a run is still going are dropped.
func NewScheduler(spec string, loc *time.Location, runner Runner, logger *slog.Logger, metrics *observability.Metrics) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		spec:    spec,
		runner:  runner,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Start registers the job and blocks until ctx is cancelled, then waits for
// an in-flight run to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() { s.trigger(ctx) })
	if err != nil {
		return fmt.Errorf("schedule map runs: %w", err)
	}

	s.cron.Start()
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)
	s.logger.Info("scheduler started", "schedule", s.spec, "next_run", s.cron.Entry(id).Next)

	<-ctx.Done()
	s.logger.Info("scheduler stopping", "reason", ctx.Err())
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) trigger(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.Run(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) || errors.Is(err, context.Canceled) {
			s.logger.Warn("scheduled run skipped", "reason", err)
			return
		}
		s.logger.Error("scheduled run failed", "error", err)
	}
}
