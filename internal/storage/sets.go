package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/freecoach/internal/models"
)

const setColumns = `id, workout_exercise_id, set_number, set_type, status, planned_weight,
	planned_reps, actual_weight, actual_reps, is_personal_record`

func queueSet(b *pgx.Batch, s models.WorkoutSet) {
	b.Queue(`INSERT INTO workout_sets (`+setColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.WorkoutExerciseID, s.SetNumber, string(s.Type), string(s.Status),
		s.PlannedWeight, s.PlannedReps, s.ActualWeight, s.ActualReps, s.IsPersonalRecord)
}

func scanSet(row pgx.Row) (models.WorkoutSet, error) {
	var s models.WorkoutSet
	err := row.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &s.Type, &s.Status,
		&s.PlannedWeight, &s.PlannedReps, &s.ActualWeight, &s.ActualReps, &s.IsPersonalRecord)
	return s, err
}

// GetSets returns the sets of a session exercise by set number.
func (db *DB) GetSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.WorkoutSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE workout_exercise_id = $1 ORDER BY set_number`, workoutExerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSet
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetSet returns a set by id, or nil.
func (db *DB) GetSet(ctx context.Context, id uuid.UUID) (*models.WorkoutSet, error) {
	s, err := scanSet(db.Pool.QueryRow(ctx,
		`SELECT `+setColumns+` FROM workout_sets WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying set %s: %w", id, err)
	}
	return &s, nil
}

// InsertSet adds a set.
func (db *DB) InsertSet(ctx context.Context, s models.WorkoutSet) error {
	b := &pgx.Batch{}
	queueSet(b, s)
	if err := db.Pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("inserting set: %w", err)
	}
	return nil
}

// DeleteSet removes a set.
func (db *DB) DeleteSet(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM workout_sets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	return nil
}

// CompleteSet records the actual weight and reps and marks the set COMPLETED.
func (db *DB) CompleteSet(ctx context.Context, id uuid.UUID, weight float64, reps int) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE workout_sets
		SET actual_weight = $2, actual_reps = $3, status = 'COMPLETED'
		WHERE id = $1
	`, id, weight, reps)
	if err != nil {
		return fmt.Errorf("completing set %s: %w", id, err)
	}
	return nil
}

// UpdateSetStatus changes the status of a set.
func (db *DB) UpdateSetStatus(ctx context.Context, id uuid.UUID, status models.SetStatus) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets SET status = $2 WHERE id = $1`, id, string(status)); err != nil {
		return fmt.Errorf("updating set status: %w", err)
	}
	return nil
}

// MarkPersonalRecord flags a set as a personal record.
func (db *DB) MarkPersonalRecord(ctx context.Context, setID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE workout_sets SET is_personal_record = TRUE WHERE id = $1`, setID); err != nil {
		return fmt.Errorf("marking personal record: %w", err)
	}
	return nil
}
