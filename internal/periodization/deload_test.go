package periodization

import (
	"testing"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/stretchr/testify/assert"
)

func weeks(n int) *int { return &n }

// weightHistory builds one session per weight with a single working set.
func weightHistory(id int64, reps int, weights ...float64) models.ExerciseHistory {
	h := models.ExerciseHistory{ExerciseID: id}
	for i, w := range weights {
		h.Sessions = append(h.Sessions, session(i*3, 1, reps, w))
	}
	return h
}

// TestDetectDeloadUserRequested verifies a user request overrides every other signal.
func TestDetectDeloadUserRequested(t *testing.T) {
	got := DetectDeload(models.LevelBeginner, nil, nil, true)
	assert.Equal(t, models.DeloadUserRequested, got)

	got = DetectDeload(models.LevelAdvanced, weeks(12), nil, true)
	assert.Equal(t, models.DeloadUserRequested, got)
}

// TestDetectDeloadSchedule covers the per-level proactive thresholds.
func TestDetectDeloadSchedule(t *testing.T) {
	tests := []struct {
		level models.ExperienceLevel
		weeks *int
		want  models.DeloadStatus
	}{
		{models.LevelBeginner, weeks(5), models.DeloadNotNeeded},
		{models.LevelBeginner, weeks(6), models.DeloadProactive},
		{models.LevelIntermediate, weeks(3), models.DeloadNotNeeded},
		{models.LevelIntermediate, weeks(4), models.DeloadProactive},
		{models.LevelAdvanced, weeks(4), models.DeloadNotNeeded},
		{models.LevelAdvanced, weeks(5), models.DeloadProactive},
		{models.LevelAdvanced, nil, models.DeloadNotNeeded},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectDeload(tt.level, tt.weeks, nil, false), "level=%s weeks=%v", tt.level, tt.weeks)
	}
}

// TestCountStalls pins the reset-after-count windowing.
func TestCountStalls(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    int
	}{
		{"empty", nil, 0},
		{"progressing", []float64{60, 62.5, 65, 67.5}, 0},
		{"one stall", []float64{60, 60, 60}, 1},
		{"five identical", []float64{60, 60, 60, 60, 60}, 1},
		{"six identical", []float64{60, 60, 60, 60, 60, 60}, 2},
		{"two separate stalls", []float64{60, 60, 60, 62.5, 65, 65, 65}, 2},
		{"broken run", []float64{60, 60, 62.5, 62.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countStalls(tt.weights))
		})
	}
}

// TestDetectDeloadBeginnerStalls needs two stalls on a single exercise.
func TestDetectDeloadBeginnerStalls(t *testing.T) {
	one := weightHistory(1, 5, 60, 60, 60, 62.5)
	assert.Equal(t, models.DeloadNotNeeded, DetectDeload(models.LevelBeginner, nil, []models.ExerciseHistory{one}, false))

	two := weightHistory(2, 5, 60, 60, 60, 60, 60, 60)
	assert.Equal(t, models.DeloadReactive, DetectDeload(models.LevelBeginner, nil, []models.ExerciseHistory{one, two}, false))
}

// TestDetectDeloadIntermediateRegression needs two consecutive e1RM drops.
func TestDetectDeloadIntermediateRegression(t *testing.T) {
	single := weightHistory(1, 5, 100, 102.5, 100)
	assert.Equal(t, models.DeloadNotNeeded, DetectDeload(models.LevelIntermediate, nil, []models.ExerciseHistory{single}, false))

	double := weightHistory(1, 5, 105, 102.5, 100)
	assert.Equal(t, models.DeloadReactive, DetectDeload(models.LevelIntermediate, nil, []models.ExerciseHistory{double}, false))

	short := weightHistory(1, 5, 102.5, 100)
	assert.Equal(t, models.DeloadNotNeeded, DetectDeload(models.LevelIntermediate, nil, []models.ExerciseHistory{short}, false))
}

// TestDetectDeloadIntermediateRepsCount checks regression uses Epley rather
// than raw weight.
func TestDetectDeloadIntermediateRepsCount(t *testing.T) {
	h := models.ExerciseHistory{ExerciseID: 1, Sessions: []models.HistoricalSession{
		session(0, 1, 5, 100),
		session(3, 1, 8, 97.5),
		session(6, 1, 10, 95),
	}}
	assert.Equal(t, models.DeloadNotNeeded, DetectDeload(models.LevelIntermediate, nil, []models.ExerciseHistory{h}, false))
}

// TestDetectDeloadAdvancedNeedsTwoExercises requires simultaneous regression.
func TestDetectDeloadAdvancedNeedsTwoExercises(t *testing.T) {
	squat := weightHistory(1, 3, 180, 175, 170)
	bench := weightHistory(2, 3, 120, 122.5, 125)
	assert.Equal(t, models.DeloadNotNeeded, DetectDeload(models.LevelAdvanced, weeks(2), []models.ExerciseHistory{squat, bench}, false))

	bench = weightHistory(2, 3, 125, 122.5, 120)
	assert.Equal(t, models.DeloadReactive, DetectDeload(models.LevelAdvanced, weeks(2), []models.ExerciseHistory{squat, bench}, false))
}
