// Package ordering arranges a session's exercises using strength and
// conditioning ordering rules.
package ordering

import (
	"slices"

	"github.com/meltforce/freecoach/internal/models"
)

// Order returns the exercises as compounds, then isolations, then core work.
// Compounds and isolations are each sorted by (OrderPriority, difficulty
// rank) so harder movements come first while the lifter is fresh. Core
// exercises are sorted compound-before-isolation, then by difficulty rank.
// Ties keep their input order. The input slice is not modified.
func Order(exercises []models.Exercise) []models.Exercise {
	var compounds, isolations, core []models.Exercise
	for _, e := range exercises {
		switch {
		case e.IsCore():
			core = append(core, e)
		case e.IsCompound():
			compounds = append(compounds, e)
		default:
			isolations = append(isolations, e)
		}
	}

	byPriority := func(a, b models.Exercise) int {
		if a.OrderPriority != b.OrderPriority {
			return a.OrderPriority - b.OrderPriority
		}
		return a.Difficulty.Rank() - b.Difficulty.Rank()
	}
	slices.SortStableFunc(compounds, byPriority)
	slices.SortStableFunc(isolations, byPriority)
	slices.SortStableFunc(core, func(a, b models.Exercise) int {
		if ac, bc := movementRank(a), movementRank(b); ac != bc {
			return ac - bc
		}
		return a.Difficulty.Rank() - b.Difficulty.Rank()
	})

	out := make([]models.Exercise, 0, len(exercises))
	out = append(out, compounds...)
	out = append(out, isolations...)
	return append(out, core...)
}

// OrderPlan reorders a plan's exercises to match Order over the catalog
// entries. Plan entries without a catalog entry keep their relative order at
// the end.
func OrderPlan(plan models.GeneratedPlan, catalog []models.Exercise) models.GeneratedPlan {
	byID := make(map[int64]models.ExercisePlan, len(plan.Exercises))
	for _, ep := range plan.Exercises {
		byID[ep.ExerciseID] = ep
	}

	var known []models.Exercise
	for _, e := range catalog {
		if _, ok := byID[e.ID]; ok {
			known = append(known, e)
		}
	}

	ordered := make([]models.ExercisePlan, 0, len(plan.Exercises))
	placed := make(map[int64]bool, len(known))
	for _, e := range Order(known) {
		if placed[e.ID] {
			continue
		}
		ordered = append(ordered, byID[e.ID])
		placed[e.ID] = true
	}
	for _, ep := range plan.Exercises {
		if !placed[ep.ExerciseID] {
			ordered = append(ordered, ep)
			placed[ep.ExerciseID] = true
		}
	}

	plan.Exercises = ordered
	return plan
}

func movementRank(e models.Exercise) int {
	if e.IsCompound() {
		return 0
	}
	return 1
}
