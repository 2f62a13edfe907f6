// Package session runs the workout session lifecycle: the pause/resume/finish
// state machine, startup recovery of stale and interrupted sessions, and the
// live tracker that logs sets against the store.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
)

var (
	// ErrSessionInProgress is returned when starting a session while another
	// one is ACTIVE or PAUSED.
	ErrSessionInProgress = errors.New("a workout session is already in progress")
	// ErrNoActiveSession is returned when an operation needs an open session
	// that does not exist or has a different id.
	ErrNoActiveSession = errors.New("no active workout session")
	// ErrInvalidTransition is returned when the state machine rejects an event.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSetNotFound is returned for set ids outside the open session.
	ErrSetNotFound = errors.New("set not found in active session")
	// ErrInvalidSetStatus is returned for set changes the set's status forbids.
	ErrInvalidSetStatus = errors.New("invalid set status change")
	// ErrSessionPaused is returned when logging sets on a paused session.
	ErrSessionPaused = errors.New("workout session is paused")
	// ErrRecoveryPending is returned until startup recovery has run.
	ErrRecoveryPending = errors.New("session recovery has not run")
)

// Store persists sessions, their exercises and their sets. Lookups return
// nil with a nil error when nothing matches.
type Store interface {
	// GetOpenSession returns the single ACTIVE or PAUSED session.
	GetOpenSession(ctx context.Context) (*models.WorkoutSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error)
	// CreateSession inserts a session with its exercises and sets atomically.
	CreateSession(ctx context.Context, s models.WorkoutSession, exercises []models.WorkoutExercise, sets []models.WorkoutSet) error
	// UpdateSession writes status, timing and notes.
	UpdateSession(ctx context.Context, s models.WorkoutSession) error
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status models.SessionStatus) error
	// ListSessionsStartedBefore returns sessions with status that started
	// before cutoff.
	ListSessionsStartedBefore(ctx context.Context, cutoff time.Time, status models.SessionStatus) ([]models.WorkoutSession, error)

	GetSessionExercises(ctx context.Context, sessionID uuid.UUID) ([]models.WorkoutExercise, error)
	InsertExercise(ctx context.Context, e models.WorkoutExercise) error
	DeleteExercise(ctx context.Context, id uuid.UUID) error
	UpdateExerciseNotes(ctx context.Context, id uuid.UUID, notes string) error

	GetSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]models.WorkoutSet, error)
	GetSet(ctx context.Context, id uuid.UUID) (*models.WorkoutSet, error)
	InsertSet(ctx context.Context, s models.WorkoutSet) error
	DeleteSet(ctx context.Context, id uuid.UUID) error
	CompleteSet(ctx context.Context, id uuid.UUID, weight float64, reps int) error
	UpdateSetStatus(ctx context.Context, id uuid.UUID, status models.SetStatus) error
	MarkPersonalRecord(ctx context.Context, setID uuid.UUID) error
}
