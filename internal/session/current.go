package session

import (
	"slices"

	"github.com/meltforce/freecoach/internal/models"
)

// ExerciseView is a workout exercise with its sets, ordered for display.
type ExerciseView struct {
	Exercise models.WorkoutExercise `json:"exercise"`
	Sets     []models.WorkoutSet    `json:"sets"`
}

// ProjectCurrentSet returns a copy of views, sorted by exercise order and
// set number, in which the first PLANNED set is shown as IN_PROGRESS. The
// input is not modified and nothing is persisted.
func ProjectCurrentSet(views []ExerciseView) []ExerciseView {
	out := make([]ExerciseView, len(views))
	for i, v := range views {
		out[i] = ExerciseView{Exercise: v.Exercise, Sets: slices.Clone(v.Sets)}
		slices.SortStableFunc(out[i].Sets, func(a, b models.WorkoutSet) int { return a.SetNumber - b.SetNumber })
	}
	slices.SortStableFunc(out, func(a, b ExerciseView) int { return a.Exercise.OrderIndex - b.Exercise.OrderIndex })

	for i := range out {
		for j := range out[i].Sets {
			if out[i].Sets[j].Status == models.SetPlanned {
				out[i].Sets[j].Status = models.SetInProgress
				return out
			}
		}
	}
	return out
}

// CurrentSet returns the set ProjectCurrentSet marks IN_PROGRESS.
func CurrentSet(views []ExerciseView) (models.WorkoutSet, bool) {
	for _, v := range ProjectCurrentSet(views) {
		for _, s := range v.Sets {
			if s.Status == models.SetInProgress {
				return s, true
			}
		}
	}
	return models.WorkoutSet{}, false
}
