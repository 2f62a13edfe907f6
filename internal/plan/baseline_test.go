package plan

import (
	"testing"
	"time"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/periodization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastSession(id int64, weight float64, reps int) models.ExerciseHistory {
	return models.ExerciseHistory{ExerciseID: id, Sessions: []models.HistoricalSession{
		{Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Sets: []models.HistoricalSet{{Weight: weight * 2, Reps: 1}}},
		{Date: time.Date(2026, 4, 8, 0, 0, 0, 0, time.UTC), Sets: []models.HistoricalSet{
			{Weight: 40, Reps: 8, IsWarmup: true},
			{Weight: weight, Reps: reps},
		}},
	}}
}

func setsOf(ep models.ExercisePlan, t models.SetType) []models.PlannedSet {
	var out []models.PlannedSet
	for _, s := range ep.Sets {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// TestBaselineSchemes checks sets and reps per category and day type.
func TestBaselineSchemes(t *testing.T) {
	req := models.PlanRequest{
		Exercises: []models.Exercise{benchPress, curl, crunch},
		Level:     models.LevelAdvanced,
		DayType:   models.DayStrength,
	}
	p := Baseline{}.Generate(req)
	require.NotNil(t, p)
	require.Len(t, p.Exercises, 3)
	assert.Equal(t, models.DayStrength, p.DayType)

	bench := setsOf(p.Exercises[0], models.SetWorking)
	assert.Len(t, bench, 4)
	assert.Equal(t, 5, bench[0].Reps)
	assert.Equal(t, 180, p.Exercises[0].RestSeconds)

	curls := setsOf(p.Exercises[1], models.SetWorking)
	assert.Len(t, curls, 3)
	assert.Equal(t, 5, curls[0].Reps)

	core := setsOf(p.Exercises[2], models.SetWorking)
	assert.Equal(t, 5, core[0].Reps)
	assert.Equal(t, 60, p.Exercises[2].RestSeconds)
}

// completeAsPlanned appends a session to histories in which every planned
// set was performed exactly as prescribed.
func completeAsPlanned(histories []models.ExerciseHistory, p *models.GeneratedPlan, date time.Time) []models.ExerciseHistory {
	for _, ep := range p.Exercises {
		sess := models.HistoricalSession{Date: date}
		for _, set := range ep.Sets {
			sess.Sets = append(sess.Sets, models.HistoricalSet{
				Weight:   set.Weight,
				Reps:     set.Reps,
				IsWarmup: set.Type == models.SetWarmup,
			})
		}
		found := false
		for i := range histories {
			if histories[i].ExerciseID == ep.ExerciseID {
				histories[i].Sessions = append(histories[i].Sessions, sess)
				found = true
			}
		}
		if !found {
			histories = append(histories, models.ExerciseHistory{ExerciseID: ep.ExerciseID, Sessions: []models.HistoricalSession{sess}})
		}
	}
	return histories
}

// TestBaselineFollowsUndulatingRotation completes each generated plan as
// prescribed and checks the next day type moves one step through
// HYPERTROPHY -> STRENGTH -> POWER -> HYPERTROPHY.
func TestBaselineFollowsUndulatingRotation(t *testing.T) {
	cases := []struct {
		name      string
		exercises []models.Exercise
	}{
		{"compound only", []models.Exercise{benchPress}},
		{"isolation only", []models.Exercise{curl}},
		{"compound and isolation", []models.Exercise{benchPress, curl}},
		{"full session", []models.Exercise{benchPress, row, curl, crunch}},
	}
	want := []models.DayType{models.DayHypertrophy, models.DayStrength, models.DayPower, models.DayHypertrophy}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var histories []models.ExerciseHistory
			date := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)

			day := periodization.DetermineDayType(models.LevelIntermediate, histories)
			require.Equal(t, models.ModelDUP, day.Model)
			require.Equal(t, want[0], day.DayType)

			for i := 1; i < len(want); i++ {
				p := Baseline{}.Generate(models.PlanRequest{
					Exercises: tc.exercises,
					Level:     models.LevelIntermediate,
					DayType:   day.DayType,
					Histories: histories,
				})
				require.NotNil(t, p)
				histories = completeAsPlanned(histories, p, date)
				date = date.AddDate(0, 0, 2)

				day = periodization.DetermineDayType(models.LevelIntermediate, histories)
				assert.Equal(t, want[i], day.DayType, "after a %s session", want[i-1])
			}
		})
	}
}

// TestBaselineWeightFromHistory converts the last session's e1RM to the
// prescribed reps and rounds down to the equipment increment.
func TestBaselineWeightFromHistory(t *testing.T) {
	req := models.PlanRequest{
		Exercises: []models.Exercise{benchPress},
		Level:     models.LevelIntermediate,
		DayType:   models.DayHypertrophy,
		Histories: []models.ExerciseHistory{lastSession(benchPress.ID, 80, 10)},
	}
	p := Baseline{}.Generate(req)
	require.NotNil(t, p)
	working := setsOf(p.Exercises[0], models.SetWorking)
	require.Len(t, working, 3)
	assert.InDelta(t, 80.0, working[0].Weight, 1e-9)

	warm := setsOf(p.Exercises[0], models.SetWarmup)
	require.Len(t, warm, 2)
	assert.InDelta(t, 40.0, warm[0].Weight, 1e-9)
	assert.InDelta(t, 60.0, warm[1].Weight, 1e-9)
}

// TestBaselineBeginnerProgression adds one increment per session.
func TestBaselineBeginnerProgression(t *testing.T) {
	req := models.PlanRequest{
		Exercises: []models.Exercise{benchPress},
		Level:     models.LevelBeginner,
		Histories: []models.ExerciseHistory{lastSession(benchPress.ID, 60, 10)},
	}
	p := Baseline{}.Generate(req)
	require.NotNil(t, p)
	assert.InDelta(t, 62.5, setsOf(p.Exercises[0], models.SetWorking)[0].Weight, 1e-9)
}

// TestBaselineDeload halves volume and drops load by ten percent.
func TestBaselineDeload(t *testing.T) {
	req := models.PlanRequest{
		Exercises: []models.Exercise{benchPress},
		Level:     models.LevelAdvanced,
		Deload:    models.DeloadReactive,
		Histories: []models.ExerciseHistory{lastSession(benchPress.ID, 100, 10)},
	}
	p := Baseline{}.Generate(req)
	require.NotNil(t, p)
	working := setsOf(p.Exercises[0], models.SetWorking)
	assert.Len(t, working, 2)
	assert.InDelta(t, 90.0, working[0].Weight, 1e-9)
	assert.NotEmpty(t, p.Notes)
}

// TestBaselineNoHistoryLeavesWeightEmpty omits warm-ups without a load.
func TestBaselineNoHistoryLeavesWeightEmpty(t *testing.T) {
	p := Baseline{}.Generate(models.PlanRequest{Exercises: []models.Exercise{benchPress}, Level: models.LevelIntermediate})
	require.NotNil(t, p)
	assert.Empty(t, setsOf(p.Exercises[0], models.SetWarmup))
	assert.Zero(t, p.Exercises[0].Sets[0].Weight)
}

// TestBaselineRespectsMinLevel skips exercises above the user's level.
func TestBaselineRespectsMinLevel(t *testing.T) {
	olympic := benchPress
	olympic.MinLevel = models.LevelAdvanced

	assert.Nil(t, Baseline{}.Generate(models.PlanRequest{Exercises: []models.Exercise{olympic}, Level: models.LevelBeginner}))
	assert.NotNil(t, Baseline{}.Generate(models.PlanRequest{Exercises: []models.Exercise{olympic}, Level: models.LevelAdvanced}))
}

// TestBaselineDeterministic returns identical plans for identical requests.
func TestBaselineDeterministic(t *testing.T) {
	req := models.PlanRequest{
		Exercises: []models.Exercise{benchPress, row, curl},
		Level:     models.LevelIntermediate,
		DayType:   models.DayPower,
		Histories: []models.ExerciseHistory{lastSession(row.ID, 70, 6)},
	}
	assert.Equal(t, Baseline{}.Generate(req), Baseline{}.Generate(req))
}
