package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/session"
)

const sessionColumns = `id, started_at, completed_at, duration_seconds, paused_duration_seconds,
	paused_at, status, template_id, notes`

func scanSession(row pgx.Row) (models.WorkoutSession, error) {
	var s models.WorkoutSession
	err := row.Scan(&s.ID, &s.StartedAt, &s.CompletedAt, &s.DurationSeconds,
		&s.PausedDurationSeconds, &s.PausedAt, &s.Status, &s.TemplateID, &s.Notes)
	return s, err
}

// GetOpenSession returns the ACTIVE or PAUSED session, or nil.
func (db *DB) GetOpenSession(ctx context.Context) (*models.WorkoutSession, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE status IN ('ACTIVE', 'PAUSED')
		 ORDER BY started_at DESC LIMIT 1`))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open session: %w", err)
	}
	return &s, nil
}

// GetSession returns a session by id, or nil.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	s, err := scanSession(db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %s: %w", id, err)
	}
	return &s, nil
}

// CreateSession inserts a session, its exercises and its sets in one
// transaction. A second open session violates the one-open index and is
// reported as session.ErrSessionInProgress.
func (db *DB) CreateSession(ctx context.Context, s models.WorkoutSession, exercises []models.WorkoutExercise, sets []models.WorkoutSet) error {
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		b.Queue(`INSERT INTO workout_sessions (`+sessionColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			s.ID, s.StartedAt, s.CompletedAt, s.DurationSeconds, s.PausedDurationSeconds,
			s.PausedAt, string(s.Status), s.TemplateID, s.Notes)
		for _, e := range exercises {
			queueExercise(b, e)
		}
		for _, set := range sets {
			queueSet(b, set)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return err
		}
		return nil
	})
	if isOneOpenViolation(err) {
		return session.ErrSessionInProgress
	}
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

func isOneOpenViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" &&
		pgErr.ConstraintName == "workout_sessions_one_open"
}

// UpdateSession writes a session's status, timing and notes.
func (db *DB) UpdateSession(ctx context.Context, s models.WorkoutSession) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE workout_sessions SET
			completed_at = $2, duration_seconds = $3, paused_duration_seconds = $4,
			paused_at = $5, status = $6, notes = $7
		WHERE id = $1
	`, s.ID, s.CompletedAt, s.DurationSeconds, s.PausedDurationSeconds,
		s.PausedAt, string(s.Status), s.Notes)
	if err != nil {
		return fmt.Errorf("updating session %s: %w", s.ID, err)
	}
	return nil
}

// UpdateSessionStatus changes only the status of a session.
func (db *DB) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}
	return nil
}

// ListSessionsStartedBefore returns sessions in status that started before cutoff.
func (db *DB) ListSessionsStartedBefore(ctx context.Context, cutoff time.Time, status models.SessionStatus) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE status = $1 AND started_at < $2
		 ORDER BY started_at`,
		string(status), cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

const exerciseRowColumns = `id, session_id, exercise_id, order_index, superset_group_id,
	rest_timer_seconds, notes`

func queueExercise(b *pgx.Batch, e models.WorkoutExercise) {
	b.Queue(`INSERT INTO workout_exercises (`+exerciseRowColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.SessionID, e.ExerciseID, e.OrderIndex, e.SupersetGroupID,
		e.RestTimerSeconds, e.Notes)
}

// GetSessionExercises returns a session's exercises in order.
func (db *DB) GetSessionExercises(ctx context.Context, sessionID uuid.UUID) ([]models.WorkoutExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseRowColumns+` FROM workout_exercises
		 WHERE session_id = $1 ORDER BY order_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session exercises: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutExercise
	for rows.Next() {
		var e models.WorkoutExercise
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ExerciseID, &e.OrderIndex,
			&e.SupersetGroupID, &e.RestTimerSeconds, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning session exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertExercise adds an exercise to a session.
func (db *DB) InsertExercise(ctx context.Context, e models.WorkoutExercise) error {
	b := &pgx.Batch{}
	queueExercise(b, e)
	if err := db.Pool.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("inserting session exercise: %w", err)
	}
	return nil
}

// DeleteExercise removes an exercise and, by cascade, its sets.
func (db *DB) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM workout_exercises WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session exercise: %w", err)
	}
	return nil
}

// UpdateExerciseNotes saves an exercise's notes.
func (db *DB) UpdateExerciseNotes(ctx context.Context, id uuid.UUID, notes string) error {
	if _, err := db.Pool.Exec(ctx,
		`UPDATE workout_exercises SET notes = $2 WHERE id = $1`, id, notes); err != nil {
		return fmt.Errorf("updating exercise notes: %w", err)
	}
	return nil
}

// SessionStartedAt reports whether any session started at exactly t.
func (db *DB) SessionStartedAt(ctx context.Context, t time.Time) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM workout_sessions WHERE started_at = $1)`, t).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking session start: %w", err)
	}
	return exists, nil
}
