package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/ingest"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/records"
)

// Store is the persistence the importer needs.
type Store interface {
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	// SessionStartedAt reports whether a session with this start time exists.
	SessionStartedAt(ctx context.Context, startedAt time.Time) (bool, error)
	CreateSession(ctx context.Context, s models.WorkoutSession, exercises []models.WorkoutExercise, sets []models.WorkoutSet) error
	MarkPersonalRecord(ctx context.Context, setID uuid.UUID) error
}

// RecordDetector finds personal records in a stored session.
type RecordDetector interface {
	Detect(ctx context.Context, sessionID uuid.UUID) ([]records.DetectedPR, error)
}

// Importer stores exported sessions as COMPLETED workout sessions so they
// feed periodization, deload detection and personal records.
type Importer struct {
	store   Store
	records RecordDetector
	log     *slog.Logger
}

// NewImporter creates an Importer. detector may be nil to skip record
// detection.
func NewImporter(store Store, detector RecordDetector, log *slog.Logger) *Importer {
	return &Importer{store: store, records: detector, log: log}
}

// Import parses an export and stores every session not already present.
// Sessions are stored oldest first so records build up chronologically.
func (im *Importer) Import(ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing export: %w", err)
	}
	slices.SortStableFunc(sessions, func(a, b Session) int { return a.Date.Compare(b.Date) })

	catalog, err := im.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exercise catalog: %w", err)
	}
	match := newMatcher(catalog)

	res := &ingest.Result{SessionsReceived: len(sessions), DryRun: dryRun}
	unmatched := map[string]bool{}

	for _, s := range sessions {
		exists, err := im.store.SessionStartedAt(ctx, s.Date)
		if err != nil {
			return res, fmt.Errorf("checking session %s: %w", s.Date.Format(time.DateTime), err)
		}
		if exists {
			res.SessionsSkipped++
			continue
		}

		ws, exercises, sets := convert(s, match, unmatched)
		if len(exercises) == 0 {
			res.SessionsSkipped++
			continue
		}
		if dryRun {
			res.SessionsImported++
			res.SetsImported += len(sets)
			continue
		}

		if err := im.store.CreateSession(ctx, ws, exercises, sets); err != nil {
			return res, fmt.Errorf("storing session %s: %w", s.Date.Format(time.DateTime), err)
		}
		res.SessionsImported++
		res.SetsImported += len(sets)
		res.RecordsDetected += im.detect(ctx, ws.ID)
	}

	for name := range unmatched {
		res.UnmatchedExercises = append(res.UnmatchedExercises, name)
	}
	slices.Sort(res.UnmatchedExercises)

	im.log.Info("alpha import complete",
		"received", res.SessionsReceived,
		"imported", res.SessionsImported,
		"skipped", res.SessionsSkipped,
		"sets", res.SetsImported,
		"unmatched", len(res.UnmatchedExercises),
		"dry_run", dryRun,
	)
	return res, nil
}

// detect runs record detection for an imported session. Failures are
// logged; the session itself is already stored.
func (im *Importer) detect(ctx context.Context, sessionID uuid.UUID) int {
	if im.records == nil {
		return 0
	}
	prs, err := im.records.Detect(ctx, sessionID)
	if err != nil {
		im.log.Warn("detecting records for imported session", "session_id", sessionID, "error", err)
		return 0
	}
	for _, pr := range prs {
		if err := im.store.MarkPersonalRecord(ctx, pr.SetID); err != nil {
			im.log.Warn("flagging personal record set", "set_id", pr.SetID, "error", err)
		}
	}
	return len(prs)
}

// convert maps an exported session onto workout rows. Exercises without a
// catalog match are recorded in unmatched and dropped.
func convert(s Session, match *matcher, unmatched map[string]bool) (models.WorkoutSession, []models.WorkoutExercise, []models.WorkoutSet) {
	ws := models.WorkoutSession{
		ID:              uuid.New(),
		StartedAt:       s.Date,
		DurationSeconds: int64(s.Duration.Seconds()),
		Status:          models.StatusCompleted,
		Notes:           "Imported from Alpha Progression: " + s.Name,
	}
	completed := s.Date.Add(s.Duration)
	ws.CompletedAt = &completed

	var (
		exercises []models.WorkoutExercise
		sets      []models.WorkoutSet
	)
	for _, ex := range s.Exercises {
		id, ok := match.find(ex.Name, ex.Equipment)
		if !ok {
			unmatched[displayName(ex)] = true
			continue
		}
		we := models.WorkoutExercise{
			ID:         uuid.New(),
			SessionID:  ws.ID,
			ExerciseID: id,
			OrderIndex: len(exercises),
		}
		exercises = append(exercises, we)

		for i, set := range ex.Sets {
			weight, reps := set.WeightKg, set.Reps
			row := models.WorkoutSet{
				ID:                uuid.New(),
				WorkoutExerciseID: we.ID,
				SetNumber:         i + 1,
				Type:              models.SetWorking,
				Status:            models.SetCompleted,
				ActualWeight:      &weight,
				ActualReps:        &reps,
			}
			if set.IsWarmup {
				row.Type = models.SetWarmup
			} else if ex.TargetReps > 0 {
				target := ex.TargetReps
				row.PlannedReps = &target
			}
			sets = append(sets, row)
		}
	}
	return ws, exercises, sets
}

func displayName(ex Exercise) string {
	if ex.Equipment == "" {
		return ex.Name
	}
	return ex.Name + " · " + ex.Equipment
}

// matcher resolves export names like "Bench Press · Barbell" to catalog
// exercises like "Barbell Bench Press".
type matcher struct {
	byKey map[string]int64
}

func newMatcher(catalog []models.Exercise) *matcher {
	m := &matcher{byKey: make(map[string]int64, 2*len(catalog))}
	for _, e := range catalog {
		m.byKey[normalize(e.Name)] = e.ID
		if e.StableID != "" {
			m.byKey[normalize(e.StableID)] = e.ID
		}
	}
	return m
}

// find tries the bare name first, then the name prefixed with its
// equipment, each also with a trailing plural "s" removed.
func (m *matcher) find(name, equipment string) (int64, bool) {
	n, e := normalize(name), normalize(equipment)
	names := []string{n, strings.TrimSuffix(n, "s")}
	prefixes := []string{"", e, strings.TrimSuffix(e, "s")}
	for _, p := range prefixes {
		for _, cand := range names {
			if id, ok := m.byKey[p+cand]; ok {
				return id, true
			}
		}
	}
	return 0, false
}

// normalize lowercases and keeps only letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
