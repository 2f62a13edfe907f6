package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordType is the kind of personal record.
type RecordType string

// RecordMaxWeight is the only record type tracked today.
const RecordMaxWeight RecordType = "MAX_WEIGHT"

// PersonalRecord is an append-only record row. Newer rows supersede older
// ones by AchievedAt.
type PersonalRecord struct {
	ID              int64      `json:"id"`
	ExerciseID      int64      `json:"exercise_id"`
	RecordType      RecordType `json:"record_type"`
	WeightValue     float64    `json:"weight_value"`
	Reps            int        `json:"reps"`
	AchievedAt      time.Time  `json:"achieved_at"`
	SourceSessionID uuid.UUID  `json:"source_session_id"`
}
