package models

import "time"

// DayType is the training focus of a session.
type DayType string

const (
	DayHypertrophy DayType = "HYPERTROPHY"
	DayStrength    DayType = "STRENGTH"
	DayPower       DayType = "POWER"
)

// PeriodizationModel names the progression scheme used for a level.
type PeriodizationModel string

const (
	ModelLinear PeriodizationModel = "linear"
	ModelDUP    PeriodizationModel = "dup"
	ModelBlock  PeriodizationModel = "block"
)

// BlockPhase is a phase of block periodization.
type BlockPhase string

const (
	PhaseAccumulation    BlockPhase = "accumulation"
	PhaseIntensification BlockPhase = "intensification"
	PhaseRealization     BlockPhase = "realization"
)

// DayPlan is the periodization decision for the next session.
type DayPlan struct {
	Model      PeriodizationModel `json:"periodization_model"`
	DayType    DayType            `json:"day_type"`
	BlockPhase *BlockPhase        `json:"block_phase,omitempty"`
	BlockWeek  *int               `json:"block_week,omitempty"`
}

// DeloadStatus is the outcome of deload detection.
type DeloadStatus string

const (
	DeloadUserRequested DeloadStatus = "USER_REQUESTED"
	DeloadProactive     DeloadStatus = "PROACTIVE_RECOMMENDED"
	DeloadReactive      DeloadStatus = "REACTIVE_RECOMMENDED"
	DeloadNotNeeded     DeloadStatus = "NOT_NEEDED"
)

// Recommended reports whether any deload applies.
func (d DeloadStatus) Recommended() bool {
	return d != "" && d != DeloadNotNeeded
}

// PlanRequest is everything plan generation needs.
type PlanRequest struct {
	Exercises []Exercise        `json:"exercises" validate:"required,min=1,max=30,dive"`
	Level     ExperienceLevel   `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
	Profile   *UserProfile      `json:"profile,omitempty"`
	Histories []ExerciseHistory `json:"histories,omitempty"`
	DayType   DayType           `json:"day_type,omitempty" validate:"omitempty,oneof=HYPERTROPHY STRENGTH POWER"`
	Deload    DeloadStatus      `json:"deload,omitempty"`
}

// ExerciseByID returns the requested exercise with the given id.
func (r PlanRequest) ExerciseByID(id int64) (Exercise, bool) {
	for _, e := range r.Exercises {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

// HistoryFor returns the history of an exercise, if any.
func (r PlanRequest) HistoryFor(exerciseID int64) (ExerciseHistory, bool) {
	for _, h := range r.Histories {
		if h.ExerciseID == exerciseID && len(h.Sessions) > 0 {
			return h, true
		}
	}
	return ExerciseHistory{}, false
}

// GeneratedPlan is a proposed session before it becomes a WorkoutSession.
type GeneratedPlan struct {
	DayType   DayType        `json:"day_type,omitempty"`
	Exercises []ExercisePlan `json:"exercises"`
	Notes     string         `json:"notes,omitempty"`
}

// ExercisePlan is the prescription for one exercise.
type ExercisePlan struct {
	ExerciseID  int64        `json:"exercise_id"`
	StableID    string       `json:"stable_id,omitempty"`
	Sets        []PlannedSet `json:"sets"`
	RestSeconds int          `json:"rest_seconds,omitempty"`
	Notes       string       `json:"notes,omitempty"`
}

// WorkingSets returns the planned working sets.
func (p ExercisePlan) WorkingSets() []PlannedSet {
	out := make([]PlannedSet, 0, len(p.Sets))
	for _, s := range p.Sets {
		if s.Type != SetWarmup {
			out = append(out, s)
		}
	}
	return out
}

// MaxWorkingWeight returns the heaviest planned working weight.
func (p ExercisePlan) MaxWorkingWeight() float64 {
	var max float64
	for _, s := range p.WorkingSets() {
		if s.Weight > max {
			max = s.Weight
		}
	}
	return max
}

// PlannedSet is one prescribed set.
type PlannedSet struct {
	Type   SetType `json:"type"`
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// CachedPlan is a stored AI plan keyed by exercise-set hash and level.
type CachedPlan struct {
	Hash            string          `json:"hash"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	Plan            GeneratedPlan   `json:"plan"`
	CreatedAt       time.Time       `json:"created_at"`
}
