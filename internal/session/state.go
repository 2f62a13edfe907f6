package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
)

// Phase is the in-memory lifecycle phase of a live session.
type Phase int

const (
	PhaseActive Phase = iota
	PhasePaused
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// State is the state machine's view of a session. PausedAt is set only in
// PhasePaused; CompletedAt only in PhaseCompleted.
type State struct {
	Phase            Phase
	SessionID        uuid.UUID
	StartedAt        time.Time
	PausedAt         time.Time
	CompletedAt      time.Time
	AccumulatedPause time.Duration
}

// EventKind is a user action on a session.
type EventKind int

const (
	EventPause EventKind = iota
	EventResume
	EventFinish
)

func (k EventKind) String() string {
	switch k {
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventFinish:
		return "finish"
	}
	return "unknown"
}

// Event is an action with the time it happened.
type Event struct {
	Kind EventKind
	At   time.Time
}

// Transition applies e to s. It returns the new state and true, or s
// unchanged and false when the pair is not in the transition table:
//
//	Active + Pause  -> Paused
//	Paused + Resume -> Active
//	Active + Finish -> Completed
func Transition(s State, e Event) (State, bool) {
	switch {
	case s.Phase == PhaseActive && e.Kind == EventPause:
		next := s
		next.Phase = PhasePaused
		next.PausedAt = e.At
		return next, true

	case s.Phase == PhasePaused && e.Kind == EventResume:
		next := s
		next.Phase = PhaseActive
		if d := e.At.Sub(s.PausedAt); d > 0 {
			next.AccumulatedPause += d
		}
		next.PausedAt = time.Time{}
		return next, true

	case s.Phase == PhaseActive && e.Kind == EventFinish:
		next := s
		next.Phase = PhaseCompleted
		next.CompletedAt = e.At
		return next, true
	}
	return s, false
}

// ActiveDuration is the wall time from start to completion (or now) minus
// accumulated pauses.
func (s State) ActiveDuration(now time.Time) time.Duration {
	end := now
	switch s.Phase {
	case PhaseCompleted:
		end = s.CompletedAt
	case PhasePaused:
		end = s.PausedAt
	}
	return max(end.Sub(s.StartedAt)-s.AccumulatedPause, 0)
}

// StateOf derives the machine state of a persisted session. Sessions in
// ABANDONED, CRASHED or DISCARDED status have no machine state.
func StateOf(s models.WorkoutSession) (State, bool) {
	st := State{
		SessionID:        s.ID,
		StartedAt:        s.StartedAt,
		AccumulatedPause: time.Duration(s.PausedDurationSeconds) * time.Second,
	}
	switch s.Status {
	case models.StatusActive:
		st.Phase = PhaseActive
	case models.StatusPaused:
		st.Phase = PhasePaused
		if s.PausedAt != nil {
			st.PausedAt = *s.PausedAt
		} else {
			st.PausedAt = s.StartedAt
		}
	case models.StatusCompleted:
		st.Phase = PhaseCompleted
		if s.CompletedAt != nil {
			st.CompletedAt = *s.CompletedAt
		}
	default:
		return State{}, false
	}
	return st, true
}

// apply writes the state's status and timing onto a persisted session.
func (s State) apply(ws *models.WorkoutSession) {
	ws.PausedDurationSeconds = int64(s.AccumulatedPause / time.Second)
	switch s.Phase {
	case PhaseActive:
		ws.Status = models.StatusActive
		ws.PausedAt = nil
	case PhasePaused:
		ws.Status = models.StatusPaused
		at := s.PausedAt
		ws.PausedAt = &at
	case PhaseCompleted:
		ws.Status = models.StatusCompleted
		ws.PausedAt = nil
		at := s.CompletedAt
		ws.CompletedAt = &at
		ws.DurationSeconds = int64(s.ActiveDuration(s.CompletedAt) / time.Second)
	}
}
