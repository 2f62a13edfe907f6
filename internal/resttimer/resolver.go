// Package resttimer resolves rest durations between sets and runs the rest
// countdown for a live session.
package resttimer

import (
	"context"
	"log/slog"

	"github.com/meltforce/freecoach/internal/models"
)

// BaselineSeconds returns the CSCS rest baseline for an exercise.
// Core work always rests 60s. Compounds rest 90/120/180s and isolations
// 60/75/75s for beginner/intermediate/advanced.
func BaselineSeconds(ex models.Exercise, level models.ExperienceLevel) int {
	if ex.IsCore() {
		return 60
	}
	level = level.OrDefault()
	if ex.IsCompound() {
		switch level {
		case models.LevelBeginner:
			return 90
		case models.LevelAdvanced:
			return 180
		default:
			return 120
		}
	}
	if level == models.LevelBeginner {
		return 60
	}
	return 75
}

// Resolve picks the rest duration by strict priority: AI plan value, then the
// user's per-exercise override, then the user's global default, then the
// baseline. A candidate is used only when present and positive.
func Resolve(ex models.Exercise, level models.ExperienceLevel, aiPlanSeconds, userOverrideSeconds, userGlobalDefaultSeconds *int) int {
	for _, candidate := range []*int{aiPlanSeconds, userOverrideSeconds, userGlobalDefaultSeconds} {
		if candidate != nil && *candidate > 0 {
			return *candidate
		}
	}
	return BaselineSeconds(ex, level)
}

// ProfileStore reads the singleton user profile. A nil profile means none
// has been created yet.
type ProfileStore interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
}

// OverrideStore reads per-exercise rest overrides set by the user.
type OverrideStore interface {
	GetRestOverride(ctx context.Context, exerciseID int64) (*int, error)
}

// Resolver resolves rest durations using the stored profile and overrides.
type Resolver struct {
	profiles  ProfileStore
	overrides OverrideStore
	log       *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(profiles ProfileStore, overrides OverrideStore, log *slog.Logger) *Resolver {
	return &Resolver{profiles: profiles, overrides: overrides, log: log}
}

// ResolveFor resolves the rest duration for an exercise. Store errors fall
// back to the next level of the chain and are only logged.
func (r *Resolver) ResolveFor(ctx context.Context, ex models.Exercise, aiPlanSeconds *int) int {
	profile, err := r.profiles.GetProfile(ctx)
	if err != nil {
		r.log.Warn("rest resolver: loading profile", "error", err)
		profile = nil
	}

	var override *int
	if r.overrides != nil {
		override, err = r.overrides.GetRestOverride(ctx, ex.ID)
		if err != nil {
			r.log.Warn("rest resolver: loading override", "exercise_id", ex.ID, "error", err)
			override = nil
		}
	}

	var global *int
	if profile != nil {
		global = profile.GlobalRestSeconds
	}
	return Resolve(ex, profile.Level(), aiPlanSeconds, override, global)
}
