// Package maintenance runs periodic housekeeping: expiring cached plans
// and abandoning sessions left open for too long.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// CacheSweeper removes expired cached plans.
type CacheSweeper interface {
	PurgeExpired(ctx context.Context) int64
}

// StaleSweeper abandons sessions that have been open too long.
type StaleSweeper interface {
	AbandonStale(ctx context.Context) (int, error)
}

// Schedules holds cron specs. An empty spec disables that job.
type Schedules struct {
	CacheSweep string
	StaleSweep string
}

// sweepTimeout bounds a single job run.
const sweepTimeout = time.Minute

// Scheduler runs the sweeps on their cron schedules.
type Scheduler struct {
	cache CacheSweeper
	stale StaleSweeper
	cron  *cron.Cron
	log   *slog.Logger
}

// New registers the jobs. It returns an error for an unparsable spec.
func New(cache CacheSweeper, stale StaleSweeper, sched Schedules, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{cache: cache, stale: stale, cron: cron.New(), log: log}

	if sched.CacheSweep != "" && cache != nil {
		if err := s.cron.AddFunc(sched.CacheSweep, func() { s.SweepCache(context.Background()) }); err != nil {
			return nil, fmt.Errorf("scheduling cache sweep %q: %w", sched.CacheSweep, err)
		}
	}
	if sched.StaleSweep != "" && stale != nil {
		if err := s.cron.AddFunc(sched.StaleSweep, func() { s.SweepStale(context.Background()) }); err != nil {
			return nil, fmt.Errorf("scheduling stale session sweep %q: %w", sched.StaleSweep, err)
		}
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("maintenance scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts the scheduler. Running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// SweepCache deletes expired cached plans and returns how many were removed.
func (s *Scheduler) SweepCache(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()
	return s.cache.PurgeExpired(ctx)
}

// SweepStale abandons stale open sessions and returns how many were closed.
func (s *Scheduler) SweepStale(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()
	n, err := s.stale.AbandonStale(ctx)
	if err != nil {
		s.log.Error("stale session sweep", "error", err)
		return n
	}
	if n > 0 {
		s.log.Info("abandoned stale sessions", "count", n)
	}
	return n
}
