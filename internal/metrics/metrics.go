// Package metrics holds the Prometheus collectors shared by the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlanGenerations counts plan generation results.
	// Labels: source (AI_GENERATED, CACHED, BASELINE, MANUAL)
	PlanGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "plan_generations_total",
		Help:      "Plan generations by resulting source",
	}, []string{"source"})

	// AIFailures counts AI provider calls that fell through to the next level.
	// Labels: reason (offline, timeout, error)
	AIFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "ai_failures_total",
		Help:      "AI plan provider calls that were treated as unavailable",
	}, []string{"reason"})

	// SafetyViolations counts violations reported for generated plans.
	// Labels: type, severity
	SafetyViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "safety_violations_total",
		Help:      "Safety violations found in generated plans",
	}, []string{"type", "severity"})

	// SessionRecoveries counts recovery outcomes at startup and on user choice.
	// Labels: outcome (abandoned, crashed, paused, resumed, discarded)
	SessionRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "session_recoveries_total",
		Help:      "Workout session recovery outcomes",
	}, []string{"outcome"})

	// PersonalRecords counts newly detected personal records.
	PersonalRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "personal_records_total",
		Help:      "Personal records detected on finished sessions",
	})

	// CacheSweeps counts plan cache expiry sweeps.
	// Labels: status (ok, error)
	CacheSweeps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "plan_cache_sweeps_total",
		Help:      "Plan cache expiry sweeps",
	}, []string{"status"})

	// APIRequests counts REST API requests.
	// Labels: method, route (chi pattern), status
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "freecoach",
		Name:      "api_requests_total",
		Help:      "REST API requests by route and status code",
	}, []string{"method", "route", "status"})
)
