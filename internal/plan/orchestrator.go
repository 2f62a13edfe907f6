package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/freecoach/internal/metrics"
	"github.com/meltforce/freecoach/internal/models"
	"golang.org/x/sync/singleflight"
)

// DefaultAITimeout bounds a single AI provider call.
const DefaultAITimeout = 30 * time.Second

// Orchestrator walks the fallback chain AI -> cache -> baseline -> manual.
// Nothing past this boundary returns an error: every failure downgrades to
// the next level.
type Orchestrator struct {
	ai       AIProvider
	cache    CacheStore
	baseline BaselineGenerator
	net      ConnectivityChecker

	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time
	flight  singleflight.Group
	log     *slog.Logger
}

// Options tune the orchestrator. Zero values use the defaults.
type Options struct {
	AITimeout time.Duration
	CacheTTL  time.Duration
}

// NewOrchestrator creates an Orchestrator. ai and baseline may be nil, in
// which case that level is always unavailable.
func NewOrchestrator(ai AIProvider, cache CacheStore, baseline BaselineGenerator, net ConnectivityChecker, opts Options, log *slog.Logger) *Orchestrator {
	if opts.AITimeout <= 0 {
		opts.AITimeout = DefaultAITimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = CacheTTL
	}
	return &Orchestrator{
		ai:       ai,
		cache:    cache,
		baseline: baseline,
		net:      net,
		timeout:  opts.AITimeout,
		ttl:      opts.CacheTTL,
		now:      time.Now,
		log:      log,
	}
}

// Generate returns the best plan currently obtainable for req.
func (o *Orchestrator) Generate(ctx context.Context, req models.PlanRequest) Result {
	res := o.generate(ctx, req)
	metrics.PlanGenerations.WithLabelValues(string(res.Source)).Inc()
	o.log.Info("plan generated", "source", res.Source, "exercises", len(req.Exercises))
	return res
}

func (o *Orchestrator) generate(ctx context.Context, req models.PlanRequest) Result {
	key := CacheKey(req.Exercises)
	level := requestLevel(req)

	o.PurgeExpired(ctx)

	p, err := o.fromAI(ctx, key, level, req)
	if err == nil {
		o.store(ctx, key, level, *p)
		return Result{Source: SourceAI, Plan: p}
	}
	o.log.Debug("ai plan unavailable", "error", err)

	if o.cache != nil {
		cached, err := o.cache.GetCachedPlan(ctx, key, level)
		switch {
		case err != nil:
			o.log.Warn("plan cache lookup failed", "error", err)
		case cached != nil && o.now().Sub(cached.CreatedAt) < o.ttl:
			p := cached.Plan
			return Result{Source: SourceCached, Plan: &p}
		}
	}

	if o.baseline != nil {
		if p := o.baseline.Generate(req); p != nil {
			return Result{Source: SourceBaseline, Plan: p}
		}
	}
	return Result{Source: SourceManual}
}

// PurgeExpired deletes cache entries older than the TTL. Failures are
// logged and otherwise ignored.
func (o *Orchestrator) PurgeExpired(ctx context.Context) int64 {
	if o.cache == nil {
		return 0
	}
	n, err := o.cache.DeleteCachedPlansBefore(ctx, o.now().Add(-o.ttl))
	if err != nil {
		metrics.CacheSweeps.WithLabelValues("error").Inc()
		o.log.Warn("purging expired plans", "error", err)
		return 0
	}
	metrics.CacheSweeps.WithLabelValues("ok").Inc()
	if n > 0 {
		o.log.Info("purged expired plans", "count", n)
	}
	return n
}

// fromAI calls the provider at most once per key and level at a time, and
// never waits longer than the configured timeout.
func (o *Orchestrator) fromAI(ctx context.Context, key string, level models.ExperienceLevel, req models.PlanRequest) (*models.GeneratedPlan, error) {
	if o.ai == nil {
		return nil, fmt.Errorf("%w: no ai provider configured", ErrUnavailable)
	}
	if o.net != nil && !o.net.IsOnline(ctx) {
		metrics.AIFailures.WithLabelValues("offline").Inc()
		return nil, fmt.Errorf("%w: offline", ErrUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	ch := o.flight.DoChan(key+"|"+string(level), func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: provider panic: %v", ErrUnavailable, r)
			}
		}()
		aiCtx, aiCancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer aiCancel()
		return o.ai.GeneratePlan(aiCtx, req)
	})

	select {
	case <-callCtx.Done():
		metrics.AIFailures.WithLabelValues("timeout").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, callCtx.Err())
	case r := <-ch:
		if r.Err != nil {
			metrics.AIFailures.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, r.Err)
		}
		p, _ := r.Val.(*models.GeneratedPlan)
		if p == nil || len(p.Exercises) == 0 {
			metrics.AIFailures.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: empty plan", ErrUnavailable)
		}
		return p, nil
	}
}

func (o *Orchestrator) store(ctx context.Context, key string, level models.ExperienceLevel, p models.GeneratedPlan) {
	if o.cache == nil {
		return
	}
	err := o.cache.SaveCachedPlan(ctx, models.CachedPlan{
		Hash:            key,
		ExperienceLevel: level,
		Plan:            p,
		CreatedAt:       o.now(),
	})
	if err != nil {
		o.log.Warn("caching ai plan", "error", err)
	}
}
