package periodization

import (
	"slices"

	"github.com/meltforce/freecoach/internal/models"
)

// stallLength is the number of consecutive sessions at the same top working
// weight that count as one beginner stall.
const stallLength = 3

// scheduledDeloadWeeks is the proactive deload interval per level.
var scheduledDeloadWeeks = map[models.ExperienceLevel]int{
	models.LevelBeginner:     6,
	models.LevelIntermediate: 4,
	models.LevelAdvanced:     5,
}

// DetectDeload decides whether the next training block should be a deload.
// An explicit user request wins, then the level's schedule, then regression
// patterns in the history.
func DetectDeload(level models.ExperienceLevel, weeksSinceLastDeload *int, histories []models.ExerciseHistory, userRequested bool) models.DeloadStatus {
	if userRequested {
		return models.DeloadUserRequested
	}

	level = level.OrDefault()
	if weeksSinceLastDeload != nil && *weeksSinceLastDeload >= scheduledDeloadWeeks[level] {
		return models.DeloadProactive
	}

	switch level {
	case models.LevelBeginner:
		for _, h := range histories {
			if countStalls(topWeights(h)) >= 2 {
				return models.DeloadReactive
			}
		}
	case models.LevelIntermediate:
		for _, h := range histories {
			if isRegressing(h) {
				return models.DeloadReactive
			}
		}
	case models.LevelAdvanced:
		regressing := 0
		for _, h := range histories {
			if isRegressing(h) {
				regressing++
			}
		}
		if regressing >= 2 {
			return models.DeloadReactive
		}
	}
	return models.DeloadNotNeeded
}

// chronological returns sessions with working sets, oldest first.
func chronological(h models.ExerciseHistory) []models.HistoricalSession {
	out := make([]models.HistoricalSession, 0, len(h.Sessions))
	for _, s := range h.Sessions {
		if len(s.WorkingSets()) > 0 {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b models.HistoricalSession) int { return a.Date.Compare(b.Date) })
	return out
}

func topWeights(h models.ExerciseHistory) []float64 {
	sessions := chronological(h)
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = s.MaxWorkingWeight()
	}
	return out
}

// countStalls counts runs of stallLength equal top weights. The run resets
// after each counted stall, so windows never overlap: six identical sessions
// are two stalls, five are one.
func countStalls(weights []float64) int {
	stalls, run := 0, 0
	for i, w := range weights {
		if run > 0 && w == weights[i-1] {
			run++
		} else {
			run = 1
		}
		if run >= stallLength {
			stalls++
			run = 0
		}
	}
	return stalls
}

// isRegressing reports whether the estimated 1RM dropped in each of the two
// most recent sessions.
func isRegressing(h models.ExerciseHistory) bool {
	sessions := chronological(h)
	if len(sessions) < 3 {
		return false
	}
	e1rm := make([]float64, len(sessions))
	for i, s := range sessions {
		for _, set := range s.WorkingSets() {
			e1rm[i] = max(e1rm[i], models.EstimatedOneRepMax(set.Weight, set.Reps))
		}
	}
	n := len(e1rm)
	return e1rm[n-1] < e1rm[n-2] && e1rm[n-2] < e1rm[n-3]
}
