package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the persisted lifecycle status of a workout session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusPaused    SessionStatus = "PAUSED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusAbandoned SessionStatus = "ABANDONED"
	StatusCrashed   SessionStatus = "CRASHED"
	StatusDiscarded SessionStatus = "DISCARDED"
)

// IsOpen reports whether the status counts toward the single open session
// invariant.
func (s SessionStatus) IsOpen() bool {
	return s == StatusActive || s == StatusPaused
}

// WorkoutSession is one training session.
type WorkoutSession struct {
	ID                    uuid.UUID     `json:"id"`
	StartedAt             time.Time     `json:"started_at"`
	CompletedAt           *time.Time    `json:"completed_at,omitempty"`
	DurationSeconds       int64         `json:"duration_seconds"`
	PausedDurationSeconds int64         `json:"paused_duration_seconds"`
	PausedAt              *time.Time    `json:"paused_at,omitempty"`
	Status                SessionStatus `json:"status"`
	TemplateID            *int64        `json:"template_id,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
}

// WorkoutExercise is an exercise instance within a session.
type WorkoutExercise struct {
	ID               uuid.UUID `json:"id"`
	SessionID        uuid.UUID `json:"session_id"`
	ExerciseID       int64     `json:"exercise_id"`
	OrderIndex       int       `json:"order_index"`
	SupersetGroupID  *int      `json:"superset_group_id,omitempty"`
	RestTimerSeconds *int      `json:"rest_timer_seconds,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// SetType distinguishes warm-up from working sets.
type SetType string

const (
	SetWarmup  SetType = "WARMUP"
	SetWorking SetType = "WORKING"
)

// SetStatus is the progress of a single set.
type SetStatus string

const (
	SetPlanned    SetStatus = "PLANNED"
	SetInProgress SetStatus = "IN_PROGRESS"
	SetCompleted  SetStatus = "COMPLETED"
	SetSkipped    SetStatus = "SKIPPED"
)

// WorkoutSet is a single set of a WorkoutExercise.
type WorkoutSet struct {
	ID                uuid.UUID `json:"id"`
	WorkoutExerciseID uuid.UUID `json:"workout_exercise_id"`
	SetNumber         int       `json:"set_number"`
	Type              SetType   `json:"type"`
	Status            SetStatus `json:"status"`
	PlannedWeight     *float64  `json:"planned_weight,omitempty"`
	PlannedReps       *int      `json:"planned_reps,omitempty"`
	ActualWeight      *float64  `json:"actual_weight,omitempty"`
	ActualReps        *int      `json:"actual_reps,omitempty"`
	IsPersonalRecord  bool      `json:"is_personal_record"`
}

// IsCompletedWorking reports whether the set is a completed working set with
// logged weight and reps.
func (s WorkoutSet) IsCompletedWorking() bool {
	return s.Type == SetWorking && s.Status == SetCompleted &&
		s.ActualWeight != nil && s.ActualReps != nil
}
