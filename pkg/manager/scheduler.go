package manager

import (
	"context"
	"time"

	"github.com/kasuboski/rollwatch/config"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/monitor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Jobs are the periodic tasks the scheduler drives
type Jobs interface {
	MonitorSessions(ctx context.Context) monitor.Result
	FlushStaleSeasons(ctx context.Context, maxAge time.Duration) int
	ResetInactiveRollingShows(ctx context.Context, inactivity time.Duration) (int, error)
}

type Scheduler struct {
	jobs   Jobs
	config config.Config
}

// NewScheduler creates a scheduler for the periodic jobs. A job whose interval is not positive never runs.
func NewScheduler(jobs Jobs, config config.Config) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		config: config,
	}
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.config.PlexSessionMonitoring.Enabled {
		g.Go(func() error {
			s.every(ctx, "session monitor", s.config.PlexSessionMonitoring.Interval, s.monitorSessions)
			return nil
		})
	}

	if s.config.Webhooks.QueueMaxAge > 0 {
		g.Go(func() error {
			s.every(ctx, "stale season flush", s.config.Webhooks.CleanupInterval, s.flushStaleSeasons)
			return nil
		})
	}

	if s.config.Rolling.InactivityDays > 0 {
		g.Go(func() error {
			s.every(ctx, "inactive rolling reset", s.config.Rolling.CleanupInterval, s.resetInactive)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	return g.Wait()
}

func (s *Scheduler) every(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	log := logger.FromCtx(ctx).With(zap.String("job", name))
	if interval <= 0 {
		log.Debug("job disabled")
		return
	}

	log.Debugw("scheduling job", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("scheduler context cancelled")
			return
		case <-ticker.C:
			job(logger.WithCtx(ctx, log))
		}
	}
}

func (s *Scheduler) monitorSessions(ctx context.Context) {
	log := logger.FromCtx(ctx)

	result := s.jobs.MonitorSessions(ctx)
	if len(result.Errors) > 0 {
		log.Warnw("session monitor finished with errors", "processed", result.ProcessedSessions, "triggered", result.TriggeredSearches, "errors", len(result.Errors))
		return
	}
	log.Debugw("session monitor finished", "processed", result.ProcessedSessions, "triggered", result.TriggeredSearches)
}

func (s *Scheduler) flushStaleSeasons(ctx context.Context) {
	flushed := s.jobs.FlushStaleSeasons(ctx, s.config.Webhooks.QueueMaxAge)
	if flushed > 0 {
		logger.FromCtx(ctx).Infow("flushed stale seasons", "count", flushed)
	}
}

func (s *Scheduler) resetInactive(ctx context.Context) {
	log := logger.FromCtx(ctx)

	reset, err := s.jobs.ResetInactiveRollingShows(ctx, s.config.Rolling.Inactivity())
	if err != nil {
		log.Error("failed to reset some inactive rolling shows", zap.Error(err))
	}
	if reset > 0 {
		log.Infow("reset inactive rolling shows", "count", reset)
	}
}
