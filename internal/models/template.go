package models

import "time"

// WorkoutTemplate is a named, reusable list of exercises.
type WorkoutTemplate struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" validate:"required,min=1,max=60"`
	ExerciseIDs []int64   `json:"exercise_ids" validate:"min=1,max=12,dive,gt=0"`
	CreatedAt   time.Time `json:"created_at"`
}
