package plan

import (
	"math"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/resttimer"
)

// Baseline builds plans offline from level defaults and the user's history.
// It is deterministic: the same request always yields the same plan.
type Baseline struct{}

// repScheme is the working sets and reps prescribed for a category.
type repScheme struct {
	sets int
	reps int
}

// Rep targets per day type. Every category keeps a day's working reps
// inside the band periodization reads back: hypertrophy at 8 or more,
// strength at 5 or fewer, power strictly between.
var compoundReps = map[models.DayType]int{
	models.DayHypertrophy: 10,
	models.DayStrength:    5,
	models.DayPower:       6,
}

var isolationReps = map[models.DayType]int{
	models.DayHypertrophy: 12,
	models.DayStrength:    5,
	models.DayPower:       7,
}

var coreReps = map[models.DayType]int{
	models.DayHypertrophy: 15,
	models.DayStrength:    5,
	models.DayPower:       7,
}

var workingSets = map[models.ExperienceLevel]int{
	models.LevelBeginner:     3,
	models.LevelIntermediate: 3,
	models.LevelAdvanced:     4,
}

const (
	deloadWeightFactor = 0.9
	warmupMinWeight    = 40.0
)

// Generate returns a plan for every exercise the user's level may
// auto-program, or nil when none qualifies.
func (Baseline) Generate(req models.PlanRequest) *models.GeneratedPlan {
	level := requestLevel(req)
	day := req.DayType
	if day == "" {
		day = models.DayHypertrophy
	}

	plan := &models.GeneratedPlan{DayType: day}
	for _, ex := range req.Exercises {
		if ex.MinLevel != "" && ex.MinLevel.Rank() > level.Rank() {
			continue
		}
		plan.Exercises = append(plan.Exercises, exercisePlan(ex, level, day, req))
	}
	if len(plan.Exercises) == 0 {
		return nil
	}
	if req.Deload.Recommended() {
		plan.Notes = "Deload: reduced volume and load."
	}
	return plan
}

func scheme(ex models.Exercise, level models.ExperienceLevel, day models.DayType) repScheme {
	sets := workingSets[level]
	switch {
	case ex.IsCore():
		return repScheme{sets: 3, reps: coreReps[day]}
	case ex.IsCompound():
		return repScheme{sets: sets, reps: compoundReps[day]}
	default:
		return repScheme{sets: 3, reps: isolationReps[day]}
	}
}

func exercisePlan(ex models.Exercise, level models.ExperienceLevel, day models.DayType, req models.PlanRequest) models.ExercisePlan {
	s := scheme(ex, level, day)
	weight := workingWeight(ex, level, s.reps, req)
	if req.Deload.Recommended() {
		s.sets = max(1, s.sets/2)
		weight = roundDown(weight*deloadWeightFactor, increment(ex))
	}

	ep := models.ExercisePlan{
		ExerciseID:  ex.ID,
		StableID:    ex.StableID,
		RestSeconds: resttimer.BaselineSeconds(ex, level),
	}
	if isBarLoaded(ex) && weight >= warmupMinWeight {
		inc := increment(ex)
		ep.Sets = append(ep.Sets,
			models.PlannedSet{Type: models.SetWarmup, Weight: roundDown(weight*0.5, inc), Reps: 8},
			models.PlannedSet{Type: models.SetWarmup, Weight: roundDown(weight*0.75, inc), Reps: 3},
		)
	}
	for range s.sets {
		ep.Sets = append(ep.Sets, models.PlannedSet{Type: models.SetWorking, Weight: weight, Reps: s.reps})
	}
	return ep
}

// workingWeight derives the load from the most recent session: the best
// estimated 1RM converted back to the prescribed reps. Beginners add one
// increment per session. Without history the weight is left at zero for
// the user to fill in.
func workingWeight(ex models.Exercise, level models.ExperienceLevel, reps int, req models.PlanRequest) float64 {
	h, ok := req.HistoryFor(ex.ID)
	if !ok {
		return 0
	}
	last, ok := h.Latest()
	if !ok {
		return 0
	}
	var e1rm float64
	for _, set := range last.WorkingSets() {
		e1rm = max(e1rm, models.EstimatedOneRepMax(set.Weight, set.Reps))
	}
	if e1rm == 0 {
		return 0
	}

	inc := increment(ex)
	weight := roundDown(e1rm/(1+float64(reps)/30), inc)
	if level == models.LevelBeginner && !req.Deload.Recommended() {
		weight += inc
	}
	return weight
}

func isBarLoaded(ex models.Exercise) bool {
	if !ex.IsCompound() {
		return false
	}
	switch ex.Equipment {
	case models.EquipmentBarbell, models.EquipmentTrapBar, models.EquipmentEZBar:
		return true
	}
	return false
}

// increment is the smallest practical load step for the equipment, in kg.
func increment(ex models.Exercise) float64 {
	switch ex.Equipment {
	case models.EquipmentBarbell, models.EquipmentTrapBar, models.EquipmentEZBar, models.EquipmentMachine:
		if ex.IsCompound() {
			return 2.5
		}
		return 1.25
	case models.EquipmentDumbbell, models.EquipmentKettlebell:
		return 2
	default:
		return 1
	}
}

func roundDown(w, step float64) float64 {
	if w <= 0 {
		return 0
	}
	return math.Floor(w/step+1e-9) * step
}
