package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseHistory is the completed-session history of one exercise.
type ExerciseHistory struct {
	ExerciseID int64               `json:"exercise_id"`
	Sessions   []HistoricalSession `json:"sessions"`
}

// HistoricalSession is one past session's sets for an exercise.
type HistoricalSession struct {
	SessionID uuid.UUID       `json:"session_id"`
	Date      time.Time       `json:"date"`
	Sets      []HistoricalSet `json:"sets"`
}

// HistoricalSet is a logged set.
type HistoricalSet struct {
	Weight   float64 `json:"weight"`
	Reps     int     `json:"reps"`
	IsWarmup bool    `json:"is_warmup,omitempty"`
}

// WorkingSets returns the non-warm-up sets.
func (s HistoricalSession) WorkingSets() []HistoricalSet {
	out := make([]HistoricalSet, 0, len(s.Sets))
	for _, set := range s.Sets {
		if !set.IsWarmup {
			out = append(out, set)
		}
	}
	return out
}

// MaxWorkingWeight returns the heaviest working set weight, or 0.
func (s HistoricalSession) MaxWorkingWeight() float64 {
	var max float64
	for _, set := range s.Sets {
		if !set.IsWarmup && set.Weight > max {
			max = set.Weight
		}
	}
	return max
}

// Latest returns the most recent session that logged working sets.
func (h ExerciseHistory) Latest() (HistoricalSession, bool) {
	var last HistoricalSession
	found := false
	for _, s := range h.Sessions {
		if len(s.WorkingSets()) == 0 {
			continue
		}
		if !found || s.Date.After(last.Date) {
			last, found = s, true
		}
	}
	return last, found
}

// LastMax returns the heaviest working weight of the most recent session,
// or 0 when there is no history. Older, heavier sessions do not count.
func (h ExerciseHistory) LastMax() float64 {
	last, ok := h.Latest()
	if !ok {
		return 0
	}
	return last.MaxWorkingWeight()
}

// EstimatedOneRepMax applies the Epley formula: weight * (1 + reps/30).
func EstimatedOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return weight * (1 + float64(reps)/30)
}
