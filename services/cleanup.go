package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DailyResetter zeroes the day's habit counters.
type DailyResetter interface {
	ResetDaily(ctx context.Context) (int64, error)
}

// Sweeper drops expired cache entries.
type Sweeper interface {
	Sweep() int
}

// CleanupService runs the periodic background jobs.
type CleanupService struct {
	cron    *cron.Cron
	log     *zap.SugaredLogger
	goals   DailyResetter
	caches  []Sweeper
	timeout time.Duration
}

// NewCleanupService registers the daily goal reset and the cache sweep.
// An empty schedule disables that job.
func NewCleanupService(log *zap.SugaredLogger, goals DailyResetter, resetSchedule, sweepSchedule string, caches ...Sweeper) (*CleanupService, error) {
	s := &CleanupService{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		log:     log,
		goals:   goals,
		caches:  caches,
		timeout: 2 * time.Minute,
	}

	if resetSchedule != "" && goals != nil {
		if _, err := s.cron.AddFunc(resetSchedule, func() { _, _ = s.ResetGoals() }); err != nil {
			return nil, errors.Wrapf(err, "schedule goal reset %q", resetSchedule)
		}
	}
	if sweepSchedule != "" && len(caches) > 0 {
		if _, err := s.cron.AddFunc(sweepSchedule, func() { s.SweepCaches() }); err != nil {
			return nil, errors.Wrapf(err, "schedule cache sweep %q", sweepSchedule)
		}
	}
	return s, nil
}

// Start starts the scheduler in its own goroutine.
func (s *CleanupService) Start() {
	s.log.Infow("cleanup jobs started", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for running jobs until ctx is done.
func (s *CleanupService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("cleanup jobs did not finish before shutdown")
	}
}

// ResetGoals zeroes every completed counter.
func (s *CleanupService) ResetGoals() (int64, error) {
	if s.goals == nil {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.goals.ResetDaily(ctx)
	if err != nil {
		s.log.Errorw("daily goal reset failed", "error", err)
		return 0, err
	}
	s.log.Infow("daily goals reset", "rows", n)
	return n, nil
}

// SweepCaches drops expired cache entries.
func (s *CleanupService) SweepCaches() int {
	removed := 0
	for _, c := range s.caches {
		removed += c.Sweep()
	}
	if removed > 0 {
		s.log.Debugw("expired cache entries removed", "count", removed)
	}
	return removed
}
