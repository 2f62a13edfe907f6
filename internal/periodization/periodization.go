// Package periodization decides the next session's training focus and
// whether a deload is due, from the user's level and completed history.
package periodization

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
)

const (
	blockWindow      = 16
	blockMinSessions = 8
	blockWeekSpan    = 3
	blockMaxWeek     = 4
	blockRepsBand    = 0.20
)

// sessionSummary aggregates one past session across every exercise.
type sessionSummary struct {
	date        time.Time
	workingSets int
	totalReps   int
}

func (s sessionSummary) avgReps() float64 {
	if s.workingSets == 0 {
		return 0
	}
	return float64(s.totalReps) / float64(s.workingSets)
}

// summarize merges per-exercise histories into per-session totals, oldest
// first. Sessions without working sets are dropped.
func summarize(histories []models.ExerciseHistory) []sessionSummary {
	type key struct {
		id   uuid.UUID
		date time.Time
	}
	byKey := map[key]*sessionSummary{}
	for _, h := range histories {
		for _, s := range h.Sessions {
			k := key{id: s.SessionID}
			if s.SessionID == uuid.Nil {
				k.date = s.Date
			}
			sum, ok := byKey[k]
			if !ok {
				sum = &sessionSummary{date: s.Date}
				byKey[k] = sum
			}
			if s.Date.After(sum.date) {
				sum.date = s.Date
			}
			for _, set := range s.WorkingSets() {
				sum.workingSets++
				sum.totalReps += set.Reps
			}
		}
	}

	out := make([]sessionSummary, 0, len(byKey))
	for _, s := range byKey {
		if s.workingSets > 0 {
			out = append(out, *s)
		}
	}
	slices.SortFunc(out, func(a, b sessionSummary) int { return a.date.Compare(b.date) })
	return out
}

// DetermineDayType returns the periodization model and day type for the
// next session.
//
// Beginners train linear hypertrophy. Intermediates rotate daily undulating
// HYPERTROPHY -> STRENGTH -> POWER, inferring the last day from its average
// working reps. Advanced lifters follow block periodization inferred from
// the last 16 sessions.
func DetermineDayType(level models.ExperienceLevel, histories []models.ExerciseHistory) models.DayPlan {
	switch level.OrDefault() {
	case models.LevelBeginner:
		return models.DayPlan{Model: models.ModelLinear, DayType: models.DayHypertrophy}
	case models.LevelAdvanced:
		return blockPlan(summarize(histories))
	default:
		return models.DayPlan{Model: models.ModelDUP, DayType: nextUndulatingDay(summarize(histories))}
	}
}

func nextUndulatingDay(sessions []sessionSummary) models.DayType {
	if len(sessions) == 0 {
		return models.DayHypertrophy
	}
	avg := sessions[len(sessions)-1].avgReps()
	switch {
	case avg >= 8: // last was hypertrophy
		return models.DayStrength
	case avg <= 5: // last was strength
		return models.DayPower
	default: // last was power
		return models.DayHypertrophy
	}
}

func blockPlan(sessions []sessionSummary) models.DayPlan {
	plan := func(phase models.BlockPhase, day models.DayType, week int) models.DayPlan {
		return models.DayPlan{Model: models.ModelBlock, DayType: day, BlockPhase: &phase, BlockWeek: &week}
	}

	if len(sessions) < blockMinSessions {
		return plan(models.PhaseAccumulation, models.DayHypertrophy, 1)
	}

	window := sessions
	if len(window) > blockWindow {
		window = window[len(window)-blockWindow:]
	}

	var sets, reps int
	for _, s := range window {
		sets += s.workingSets
		reps += s.totalReps
	}
	avgReps := float64(reps) / float64(sets)
	avgSets := float64(sets) / float64(len(window))
	week := estimateBlockWeek(window, avgReps)

	switch {
	case avgReps >= 8 && avgSets >= 16:
		return plan(models.PhaseAccumulation, models.DayHypertrophy, week)
	case avgReps >= 4 && avgReps < 8 && avgSets >= 12 && avgSets <= 16:
		return plan(models.PhaseIntensification, models.DayStrength, week)
	case avgReps < 4 && avgSets < 12:
		return plan(models.PhaseRealization, models.DayPower, week)
	default:
		return plan(models.PhaseAccumulation, models.DayHypertrophy, week)
	}
}

// estimateBlockWeek counts the most recent consecutive sessions whose average
// reps sit within 20% of the window average, in three-session weeks.
func estimateBlockWeek(window []sessionSummary, avgReps float64) int {
	count := 0
	for i := len(window) - 1; i >= 0; i-- {
		if math.Abs(window[i].avgReps()-avgReps) > blockRepsBand*avgReps {
			break
		}
		count++
	}
	return min(max(count/blockWeekSpan, 1), blockMaxWeek)
}
