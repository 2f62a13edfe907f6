package models

import (
	"testing"
	"time"
)

// TestLastMaxUsesMostRecentSession verifies that a heavier older session
// does not mask a lighter, more recent one, and that sessions holding only
// warm-ups are skipped.
func TestLastMaxUsesMostRecentSession(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 6, d, 18, 0, 0, 0, time.UTC) }
	h := ExerciseHistory{ExerciseID: 1, Sessions: []HistoricalSession{
		{Date: day(17), Sets: []HistoricalSet{{Weight: 40, Reps: 8, IsWarmup: true}}},
		{Date: day(3), Sets: []HistoricalSet{{Weight: 100, Reps: 5}}},
		{Date: day(15), Sets: []HistoricalSet{{Weight: 60, Reps: 8, IsWarmup: true}, {Weight: 80, Reps: 5}, {Weight: 77.5, Reps: 5}}},
	}}

	if got := h.LastMax(); got != 80 {
		t.Errorf("LastMax = %v, want 80", got)
	}
	last, ok := h.Latest()
	if !ok || !last.Date.Equal(day(15)) {
		t.Errorf("Latest = %+v, %v; want session of %v", last, ok, day(15))
	}
}

// TestLastMaxWithoutWorkingSets verifies that empty and warm-up only
// histories report no maximum.
func TestLastMaxWithoutWorkingSets(t *testing.T) {
	if got := (ExerciseHistory{}).LastMax(); got != 0 {
		t.Errorf("empty LastMax = %v, want 0", got)
	}
	h := ExerciseHistory{Sessions: []HistoricalSession{{Sets: []HistoricalSet{{Weight: 40, Reps: 8, IsWarmup: true}}}}}
	if _, ok := h.Latest(); ok {
		t.Error("Latest reported a warm-up only session")
	}
	if got := h.LastMax(); got != 0 {
		t.Errorf("warm-up only LastMax = %v, want 0", got)
	}
}
