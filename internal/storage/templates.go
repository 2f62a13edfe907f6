package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/freecoach/internal/models"
)

// CreateTemplate inserts a template and returns its id.
func (db *DB) CreateTemplate(ctx context.Context, t models.WorkoutTemplate) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO workout_templates (name, exercise_ids, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, t.Name, t.ExerciseIDs, t.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting template: %w", err)
	}
	return id, nil
}

// GetTemplate returns a template, or nil.
func (db *DB) GetTemplate(ctx context.Context, id int64) (*models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, exercise_ids, created_at FROM workout_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.ExerciseIDs, &t.CreatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying template %d: %w", id, err)
	}
	return &t, nil
}

// ListTemplates returns all templates, newest first.
func (db *DB) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, exercise_ids, created_at FROM workout_templates ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		var t models.WorkoutTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.ExerciseIDs, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// DeleteTemplate removes a template and reports whether it existed.
func (db *DB) DeleteTemplate(ctx context.Context, id int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workout_templates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting template: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
