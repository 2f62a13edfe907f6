// Package safety checks generated plans against hard and soft training
// limits. Validation is advisory: it never fails and never changes the plan.
package safety

import (
	"fmt"
	"slices"

	"github.com/meltforce/freecoach/internal/models"
)

// Hard volume ceilings, independent of experience level.
const (
	MaxSessionWorkingSets     = 30
	MaxExercisesPerSession    = 12
	MaxWorkingSetsPerExercise = 6
	MaxGroupWorkingSets       = 16
)

// eps absorbs float noise so that a jump of exactly the limit passes.
const eps = 1e-9

// mrv is the soft maximum recoverable volume per muscle group per session.
var mrv = map[models.ExperienceLevel]int{
	models.LevelBeginner:     12,
	models.LevelIntermediate: 16,
	models.LevelAdvanced:     20,
}

// Validate returns every violation found in plan. An empty result means the
// plan is safe. The request supplies the catalog entries, histories and
// profile the rules are evaluated against.
func Validate(plan models.GeneratedPlan, req models.PlanRequest) []models.SafetyViolation {
	level := requestLevel(req)
	var out []models.SafetyViolation

	out = append(out, checkVolume(plan, req, level)...)
	for _, ep := range plan.Exercises {
		ex, ok := req.ExerciseByID(ep.ExerciseID)
		if !ok {
			continue
		}
		if v, ok := checkWeightJump(ep, ex, req); ok {
			out = append(out, v)
		}
		if v, ok := checkAgeIntensity(ep, ex, req); ok {
			out = append(out, v)
		}
		if v, ok := checkDifficulty(ex, level); ok {
			out = append(out, v)
		}
		if v, ok := checkRest(ep, ex, level); ok {
			out = append(out, v)
		}
	}
	return out
}

func requestLevel(req models.PlanRequest) models.ExperienceLevel {
	if _, ok := models.ParseExperienceLevel(string(req.Level)); ok {
		return req.Level
	}
	return req.Profile.Level()
}

func exerciseID(id int64) *int64 { return &id }

// JumpLimits returns the maximum relative and absolute (kg) increase over
// the last working max allowed for an exercise.
func JumpLimits(ex models.Exercise) (relative, absolute float64) {
	if !ex.IsCompound() {
		return 0.15, 5
	}
	switch ex.Equipment {
	case models.EquipmentBarbell, models.EquipmentEZBar, models.EquipmentTrapBar:
		return 0.10, 10
	case models.EquipmentDumbbell:
		return 0.10, 5
	case models.EquipmentMachine:
		return 0.15, 10
	default:
		return 0.15, 5
	}
}

func checkWeightJump(ep models.ExercisePlan, ex models.Exercise, req models.PlanRequest) (models.SafetyViolation, bool) {
	h, ok := req.HistoryFor(ex.ID)
	if !ok {
		return models.SafetyViolation{}, false
	}
	last := h.LastMax()
	planned := ep.MaxWorkingWeight()
	if last <= 0 || planned <= last {
		return models.SafetyViolation{}, false
	}

	maxRel, maxAbs := JumpLimits(ex)
	jump := planned - last
	rel := jump / last
	if rel <= maxRel+eps && jump <= maxAbs+eps {
		return models.SafetyViolation{}, false
	}
	return models.SafetyViolation{
		Type:       models.ViolationWeightJump,
		ExerciseID: exerciseID(ex.ID),
		Message: fmt.Sprintf("%s: planned %.1f kg is +%.1f kg (%.1f%%) over last max %.1f kg; limit is %.0f%% or %.1f kg",
			ex.Name, planned, jump, rel*100, last, maxRel*100, maxAbs),
		Severity: models.SeverityHigh,
	}, true
}

func checkVolume(plan models.GeneratedPlan, req models.PlanRequest, level models.ExperienceLevel) []models.SafetyViolation {
	var out []models.SafetyViolation

	total := 0
	groups := map[int64]int{}
	for _, ep := range plan.Exercises {
		n := len(ep.WorkingSets())
		total += n
		if ex, ok := req.ExerciseByID(ep.ExerciseID); ok {
			groups[ex.PrimaryGroupID] += n
		}
		if n > MaxWorkingSetsPerExercise {
			out = append(out, models.SafetyViolation{
				Type:       models.ViolationExerciseVolume,
				ExerciseID: exerciseID(ep.ExerciseID),
				Message:    fmt.Sprintf("exercise %d has %d working sets (max %d)", ep.ExerciseID, n, MaxWorkingSetsPerExercise),
				Severity:   models.SeverityWarning,
			})
		}
	}

	if total > MaxSessionWorkingSets {
		out = append(out, models.SafetyViolation{
			Type:     models.ViolationSessionVolume,
			Message:  fmt.Sprintf("session has %d working sets (max %d)", total, MaxSessionWorkingSets),
			Severity: models.SeverityHigh,
		})
	}
	if n := len(plan.Exercises); n > MaxExercisesPerSession {
		out = append(out, models.SafetyViolation{
			Type:     models.ViolationExerciseCount,
			Message:  fmt.Sprintf("session has %d exercises (max %d)", n, MaxExercisesPerSession),
			Severity: models.SeverityWarning,
		})
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	soft := mrv[level]
	for _, id := range ids {
		sets := groups[id]
		switch {
		case sets > MaxGroupWorkingSets:
			out = append(out, models.SafetyViolation{
				Type:     models.ViolationMuscleGroupVolume,
				Message:  fmt.Sprintf("muscle group %d has %d working sets (max %d)", id, sets, MaxGroupWorkingSets),
				Severity: models.SeverityHigh,
			})
		case sets > soft:
			out = append(out, models.SafetyViolation{
				Type:     models.ViolationMuscleGroupMRV,
				Message:  fmt.Sprintf("muscle group %d has %d working sets, above the %s recoverable volume of %d", id, sets, level, soft),
				Severity: models.SeverityWarning,
			})
		}
	}
	return out
}

// AgeReduction returns the intensity reduction applied for an age.
func AgeReduction(age int) float64 {
	switch {
	case age < 18:
		return 0.15
	case age > 60:
		return 0.10
	case age > 50:
		return 0.05
	case age > 40:
		return 0.025
	default:
		return 0
	}
}

func checkAgeIntensity(ep models.ExercisePlan, ex models.Exercise, req models.PlanRequest) (models.SafetyViolation, bool) {
	if req.Profile == nil || req.Profile.Age == nil {
		return models.SafetyViolation{}, false
	}
	reduction := AgeReduction(*req.Profile.Age)
	if reduction == 0 {
		return models.SafetyViolation{}, false
	}
	h, ok := req.HistoryFor(ex.ID)
	if !ok || h.LastMax() <= 0 {
		return models.SafetyViolation{}, false
	}

	allowed := h.LastMax() * 1.10 * (1 - reduction)
	planned := ep.MaxWorkingWeight()
	if planned <= allowed+eps {
		return models.SafetyViolation{}, false
	}
	return models.SafetyViolation{
		Type:       models.ViolationAgeIntensity,
		ExerciseID: exerciseID(ex.ID),
		Message: fmt.Sprintf("%s: planned %.1f kg exceeds %.1f kg allowed at age %d",
			ex.Name, planned, allowed, *req.Profile.Age),
		Severity: models.SeverityWarning,
	}, true
}

func checkDifficulty(ex models.Exercise, level models.ExperienceLevel) (models.SafetyViolation, bool) {
	if ex.Difficulty != models.DifficultyAdvanced || level.Rank() >= models.LevelIntermediate.Rank() {
		return models.SafetyViolation{}, false
	}
	return models.SafetyViolation{
		Type:       models.ViolationDifficulty,
		ExerciseID: exerciseID(ex.ID),
		Message:    fmt.Sprintf("%s is an advanced exercise and is not suitable for a %s lifter", ex.Name, level),
		Severity:   models.SeverityHigh,
	}, true
}

// MinRestSeconds returns the shortest acceptable rest for an exercise.
func MinRestSeconds(ex models.Exercise, level models.ExperienceLevel) int {
	if ex.IsCore() || !ex.IsCompound() {
		return 45
	}
	switch level {
	case models.LevelBeginner:
		return 60
	case models.LevelAdvanced:
		return 90
	default:
		return 75
	}
}

func checkRest(ep models.ExercisePlan, ex models.Exercise, level models.ExperienceLevel) (models.SafetyViolation, bool) {
	if ep.RestSeconds <= 0 {
		return models.SafetyViolation{}, false
	}
	floor := MinRestSeconds(ex, level)
	if ep.RestSeconds >= floor {
		return models.SafetyViolation{}, false
	}
	return models.SafetyViolation{
		Type:       models.ViolationRestDuration,
		ExerciseID: exerciseID(ex.ID),
		Message:    fmt.Sprintf("%s: %ds rest is below the %ds minimum", ex.Name, ep.RestSeconds, floor),
		Severity:   models.SeverityWarning,
	}, true
}
