// Package records detects personal records in finished workout sessions.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/metrics"
	"github.com/meltforce/freecoach/internal/models"
)

// SessionReader reads the exercises and sets logged in a session.
type SessionReader interface {
	GetSessionExercises(ctx context.Context, sessionID uuid.UUID) ([]models.WorkoutExercise, error)
	GetSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.WorkoutSet, error)
}

// Store persists personal records.
type Store interface {
	// GetBestRecord returns the current best of a type, or nil if none exists.
	GetBestRecord(ctx context.Context, exerciseID int64, recordType models.RecordType) (*models.PersonalRecord, error)
	// InsertRecords appends records in one batch.
	InsertRecords(ctx context.Context, records []models.PersonalRecord) error
}

// DetectedPR is a new record found in a session, returned for display.
type DetectedPR struct {
	ExerciseID   int64             `json:"exercise_id"`
	SetID        uuid.UUID         `json:"set_id"`
	RecordType   models.RecordType `json:"record_type"`
	Weight       float64           `json:"weight"`
	Reps         int               `json:"reps"`
	PreviousBest *float64          `json:"previous_best,omitempty"`
}

// Detector compares a session's heaviest working sets with stored records.
type Detector struct {
	sessions SessionReader
	records  Store
	now      func() time.Time
	log      *slog.Logger
}

// NewDetector creates a Detector.
func NewDetector(sessions SessionReader, records Store, log *slog.Logger) *Detector {
	return &Detector{sessions: sessions, records: records, now: time.Now, log: log}
}

// Detect finds MAX_WEIGHT records in a session and inserts them. A set is a
// record only when its weight is strictly greater than the stored best.
func (d *Detector) Detect(ctx context.Context, sessionID uuid.UUID) ([]DetectedPR, error) {
	exercises, err := d.sessions.GetSessionExercises(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session exercises: %w", err)
	}

	var (
		found []DetectedPR
		rows  []models.PersonalRecord
	)
	achievedAt := d.now()
	for _, we := range exercises {
		sets, err := d.sessions.GetSets(ctx, we.ID)
		if err != nil {
			return nil, fmt.Errorf("loading sets for exercise %d: %w", we.ExerciseID, err)
		}
		top, ok := heaviestWorkingSet(sets)
		if !ok {
			continue
		}

		best, err := d.records.GetBestRecord(ctx, we.ExerciseID, models.RecordMaxWeight)
		if err != nil {
			return nil, fmt.Errorf("loading best record for exercise %d: %w", we.ExerciseID, err)
		}
		weight := *top.ActualWeight
		var previous *float64
		if best != nil {
			if weight <= best.WeightValue {
				continue
			}
			previous = &best.WeightValue
		}

		found = append(found, DetectedPR{
			ExerciseID:   we.ExerciseID,
			SetID:        top.ID,
			RecordType:   models.RecordMaxWeight,
			Weight:       weight,
			Reps:         *top.ActualReps,
			PreviousBest: previous,
		})
		rows = append(rows, models.PersonalRecord{
			ExerciseID:      we.ExerciseID,
			RecordType:      models.RecordMaxWeight,
			WeightValue:     weight,
			Reps:            *top.ActualReps,
			AchievedAt:      achievedAt,
			SourceSessionID: sessionID,
		})
	}

	if len(rows) == 0 {
		return nil, nil
	}
	if err := d.records.InsertRecords(ctx, rows); err != nil {
		return nil, fmt.Errorf("inserting personal records: %w", err)
	}
	metrics.PersonalRecords.Add(float64(len(rows)))
	d.log.Info("personal records detected", "session_id", sessionID, "count", len(rows))
	return found, nil
}

// Best returns the stored MAX_WEIGHT record of an exercise, or nil.
func (d *Detector) Best(ctx context.Context, exerciseID int64) (*models.PersonalRecord, error) {
	rec, err := d.records.GetBestRecord(ctx, exerciseID, models.RecordMaxWeight)
	if err != nil {
		return nil, fmt.Errorf("loading best record: %w", err)
	}
	return rec, nil
}

// heaviestWorkingSet returns the first completed working set with the
// highest actual weight.
func heaviestWorkingSet(sets []models.WorkoutSet) (models.WorkoutSet, bool) {
	var (
		top   models.WorkoutSet
		found bool
	)
	for _, s := range sets {
		if !s.IsCompletedWorking() {
			continue
		}
		if !found || *s.ActualWeight > *top.ActualWeight {
			top, found = s, true
		}
	}
	return top, found
}
