package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/freecoach/internal/models"
)

const exerciseColumns = `id, stable_id, name, equipment, movement_type, difficulty,
	primary_group_id, order_priority, min_level`

func scanExercise(row pgx.Row) (models.Exercise, error) {
	var e models.Exercise
	err := row.Scan(&e.ID, &e.StableID, &e.Name, &e.Equipment, &e.MovementType,
		&e.Difficulty, &e.PrimaryGroupID, &e.OrderPriority, &e.MinLevel)
	return e, err
}

// GetExercise returns a catalog entry, or nil if the id is unknown.
func (db *DB) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := scanExercise(db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %d: %w", id, err)
	}
	return &e, nil
}

// GetExercisesByIDs returns the catalog entries that exist among ids.
func (db *DB) GetExercisesByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()
	return scanExercises(rows)
}

// ListExercises returns the whole catalog.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+` FROM exercises ORDER BY primary_group_id, order_priority, name`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()
	return scanExercises(rows)
}

func scanExercises(rows pgx.Rows) ([]models.Exercise, error) {
	var result []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetRestOverride returns the user's rest override for an exercise, or nil.
func (db *DB) GetRestOverride(ctx context.Context, exerciseID int64) (*int, error) {
	var secs int
	err := db.Pool.QueryRow(ctx,
		`SELECT rest_seconds FROM exercise_rest_overrides WHERE exercise_id = $1`,
		exerciseID).Scan(&secs)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying rest override: %w", err)
	}
	return &secs, nil
}

// SetRestOverride stores a rest override. A nil seconds clears it.
func (db *DB) SetRestOverride(ctx context.Context, exerciseID int64, seconds *int) error {
	var err error
	if seconds == nil {
		_, err = db.Pool.Exec(ctx,
			`DELETE FROM exercise_rest_overrides WHERE exercise_id = $1`, exerciseID)
	} else {
		_, err = db.Pool.Exec(ctx, `
			INSERT INTO exercise_rest_overrides (exercise_id, rest_seconds)
			VALUES ($1, $2)
			ON CONFLICT (exercise_id) DO UPDATE SET rest_seconds = EXCLUDED.rest_seconds
		`, exerciseID, *seconds)
	}
	if err != nil {
		return fmt.Errorf("saving rest override: %w", err)
	}
	return nil
}
