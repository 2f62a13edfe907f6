package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
)

// historyRow is one completed set of a completed session.
type historyRow struct {
	ExerciseID int64
	SessionID  uuid.UUID
	StartedAt  time.Time
	SetType    models.SetType
	Weight     float64
	Reps       int
}

// GetExerciseHistories returns, per exercise, the completed sets of its
// most recent sessionLimit completed sessions. Exercises without history
// are omitted.
func (db *DB) GetExerciseHistories(ctx context.Context, exerciseIDs []int64, sessionLimit int) ([]models.ExerciseHistory, error) {
	if len(exerciseIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Pool.Query(ctx, `
		WITH ranked AS (
			SELECT we.id AS we_id, we.exercise_id, ws.id AS session_id, ws.started_at,
			       DENSE_RANK() OVER (PARTITION BY we.exercise_id ORDER BY ws.started_at DESC, ws.id) AS rn
			FROM workout_exercises we
			JOIN workout_sessions ws ON ws.id = we.session_id
			WHERE we.exercise_id = ANY($1) AND ws.status = 'COMPLETED'
		)
		SELECT r.exercise_id, r.session_id, r.started_at, s.set_type, s.actual_weight, s.actual_reps
		FROM ranked r
		JOIN workout_sets s ON s.workout_exercise_id = r.we_id
		WHERE r.rn <= $2
		  AND s.status = 'COMPLETED'
		  AND s.actual_weight IS NOT NULL
		  AND s.actual_reps IS NOT NULL
		ORDER BY r.exercise_id, r.started_at, s.set_number
	`, exerciseIDs, sessionLimit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var flat []historyRow
	for rows.Next() {
		var h historyRow
		if err := rows.Scan(&h.ExerciseID, &h.SessionID, &h.StartedAt, &h.SetType, &h.Weight, &h.Reps); err != nil {
			return nil, fmt.Errorf("scanning exercise history: %w", err)
		}
		flat = append(flat, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exercise history: %w", err)
	}
	return groupHistory(flat), nil
}

// groupHistory folds rows ordered by exercise then session into histories.
func groupHistory(rows []historyRow) []models.ExerciseHistory {
	var out []models.ExerciseHistory
	for _, r := range rows {
		if len(out) == 0 || out[len(out)-1].ExerciseID != r.ExerciseID {
			out = append(out, models.ExerciseHistory{ExerciseID: r.ExerciseID})
		}
		h := &out[len(out)-1]
		if n := len(h.Sessions); n == 0 || h.Sessions[n-1].SessionID != r.SessionID {
			h.Sessions = append(h.Sessions, models.HistoricalSession{SessionID: r.SessionID, Date: r.StartedAt})
		}
		s := &h.Sessions[len(h.Sessions)-1]
		s.Sets = append(s.Sets, models.HistoricalSet{
			Weight:   r.Weight,
			Reps:     r.Reps,
			IsWarmup: r.SetType == models.SetWarmup,
		})
	}
	return out
}
