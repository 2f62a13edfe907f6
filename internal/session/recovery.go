package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/metrics"
	"github.com/meltforce/freecoach/internal/models"
)

// StaleAfter is the age past which an ACTIVE session cannot be a real
// workout and is abandoned.
const StaleAfter = 24 * time.Hour

// Recoverable is an open session found at startup. Crashed is true when the
// process died mid-workout (status ACTIVE) rather than while paused.
type Recoverable struct {
	Session models.WorkoutSession `json:"session"`
	Crashed bool                  `json:"crashed"`
}

// Recovery reclaims stale sessions and finds the interrupted one.
type Recovery struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

// NewRecovery creates a Recovery.
func NewRecovery(store Store, log *slog.Logger) *Recovery {
	return &Recovery{store: store, now: time.Now, log: log}
}

// Recover abandons stale ACTIVE sessions, then returns the open session if
// one remains. Both steps finish before it returns.
func (r *Recovery) Recover(ctx context.Context) (*Recoverable, error) {
	if _, err := r.AbandonStale(ctx); err != nil {
		return nil, err
	}

	open, err := r.store.GetOpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding open session: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	rec := &Recoverable{Session: *open, Crashed: open.Status == models.StatusActive}
	if rec.Crashed {
		metrics.SessionRecoveries.WithLabelValues("crashed").Inc()
		r.log.Warn("workout interrupted", "session_id", open.ID, "status", open.Status, "started_at", open.StartedAt)
	} else {
		metrics.SessionRecoveries.WithLabelValues("paused").Inc()
		r.log.Info("paused workout found", "session_id", open.ID, "started_at", open.StartedAt)
	}
	return rec, nil
}

// AbandonStale moves every ACTIVE session older than StaleAfter to
// ABANDONED and returns how many were moved. PAUSED sessions are left
// recoverable.
func (r *Recovery) AbandonStale(ctx context.Context) (int, error) {
	stale, err := r.store.ListSessionsStartedBefore(ctx, r.now().Add(-StaleAfter), models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("listing stale sessions: %w", err)
	}
	for _, s := range stale {
		if err := r.store.UpdateSessionStatus(ctx, s.ID, models.StatusAbandoned); err != nil {
			return 0, fmt.Errorf("abandoning session %s: %w", s.ID, err)
		}
		metrics.SessionRecoveries.WithLabelValues("abandoned").Inc()
		r.log.Info("abandoned stale session", "session_id", s.ID, "started_at", s.StartedAt)
	}
	return len(stale), nil
}

// Discard closes an open session the user chose not to resume: ACTIVE
// becomes CRASHED and PAUSED becomes DISCARDED.
func (r *Recovery) Discard(ctx context.Context, id uuid.UUID) (models.SessionStatus, error) {
	s, err := r.openSession(ctx, id)
	if err != nil {
		return "", err
	}
	status := models.StatusDiscarded
	if s.Status == models.StatusActive {
		status = models.StatusCrashed
	}
	if err := r.store.UpdateSessionStatus(ctx, id, status); err != nil {
		return "", fmt.Errorf("discarding session: %w", err)
	}
	metrics.SessionRecoveries.WithLabelValues("discarded").Inc()
	r.log.Info("discarded recovered session", "session_id", id, "status", status)
	return status, nil
}

// Resume hands an open session back to the live flow without changing its
// status.
func (r *Recovery) Resume(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	s, err := r.openSession(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.SessionRecoveries.WithLabelValues("resumed").Inc()
	return s, nil
}

func (r *Recovery) openSession(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	s, err := r.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil || !s.Status.IsOpen() {
		return nil, ErrNoActiveSession
	}
	return s, nil
}
