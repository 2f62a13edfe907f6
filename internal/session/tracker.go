package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/records"
	"github.com/meltforce/freecoach/internal/resttimer"
)

// Catalog looks up exercise reference data.
type Catalog interface {
	GetExercise(ctx context.Context, id int64) (*models.Exercise, error)
}

// RestResolver resolves the rest duration of an exercise.
type RestResolver interface {
	ResolveFor(ctx context.Context, ex models.Exercise, aiPlanSeconds *int) int
}

// RecordDetector finds personal records in a finished session.
type RecordDetector interface {
	Detect(ctx context.Context, sessionID uuid.UUID) ([]records.DetectedPR, error)
}

// StartRequest starts a session from a plan. Exercises without sets are
// added empty for the user to fill in.
type StartRequest struct {
	Plan       models.GeneratedPlan `json:"plan"`
	TemplateID *int64               `json:"template_id,omitempty"`
	Notes      string               `json:"notes,omitempty"`
}

// SetLog is the logged result of a set.
type SetLog struct {
	Weight float64 `json:"weight" validate:"gte=0,lte=1000"`
	Reps   int     `json:"reps" validate:"gt=0,lte=100"`
}

// SetResult is a set after a change, with the rest countdown it started.
type SetResult struct {
	Set         models.WorkoutSet `json:"set"`
	RestSeconds int               `json:"rest_seconds,omitempty"`
}

// FinishResult is a completed session and the records it set.
type FinishResult struct {
	Session models.WorkoutSession `json:"session"`
	Records []records.DetectedPR  `json:"records"`
}

// Tracker drives the single live workout session. Every change is written
// to the store before it is reported back, so a crash never loses an
// acknowledged set. Recover must be called once before anything else.
type Tracker struct {
	store    Store
	recovery *Recovery
	catalog  Catalog
	rest     RestResolver
	records  RecordDetector
	timer    *resttimer.Countdown
	now      func() time.Time
	log      *slog.Logger

	mu          sync.Mutex
	recovered   bool
	subscribers map[int]func(*models.WorkoutSession)
	nextSub     int
}

// NewTracker creates a Tracker that owns timer.
func NewTracker(store Store, catalog Catalog, rest RestResolver, detector RecordDetector, timer *resttimer.Countdown, log *slog.Logger) *Tracker {
	return &Tracker{
		store:       store,
		recovery:    NewRecovery(store, log),
		catalog:     catalog,
		rest:        rest,
		records:     detector,
		timer:       timer,
		now:         time.Now,
		log:         log,
		subscribers: map[int]func(*models.WorkoutSession){},
	}
}

// OnActiveSessionChanged registers fn to run after the open session starts,
// changes status or closes (fn receives nil). Callbacks run synchronously
// and must not call back into the Tracker. The returned func unsubscribes.
func (t *Tracker) OnActiveSessionChanged(fn func(*models.WorkoutSession)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSub
	t.nextSub++
	t.subscribers[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subscribers, id)
	}
}

func (t *Tracker) notify(s *models.WorkoutSession) {
	for _, fn := range t.subscribers {
		if s == nil {
			fn(nil)
			continue
		}
		cp := *s
		fn(&cp)
	}
}

// Recover runs startup recovery and unlocks the tracker. It returns the
// interrupted session, if any, for the caller to resume or discard.
func (t *Tracker) Recover(ctx context.Context) (*Recoverable, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, err := t.recovery.Recover(ctx)
	if err != nil {
		return nil, err
	}
	t.recovered = true
	return rec, nil
}

// Recoverable reports the currently open session as Recover would, without
// running the stale sweep again.
func (t *Tracker) Recoverable(ctx context.Context) (*Recoverable, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.recovered {
		return nil, ErrRecoveryPending
	}
	s, err := t.store.GetOpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding open session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	return &Recoverable{Session: *s, Crashed: s.Status == models.StatusActive}, nil
}

// AbandonStale runs the stale-session sweep on demand.
func (t *Tracker) AbandonStale(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.recovery.AbandonStale(ctx)
	if n > 0 {
		t.timer.Cancel()
		t.notify(nil)
	}
	return n, err
}

// Discard closes a recovered session the user does not want to resume.
func (t *Tracker) Discard(ctx context.Context, id uuid.UUID) (models.SessionStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.recovered {
		return "", ErrRecoveryPending
	}
	status, err := t.recovery.Discard(ctx, id)
	if err != nil {
		return "", err
	}
	t.timer.Cancel()
	t.notify(nil)
	return status, nil
}

// Resume returns a recovered session to the live flow.
func (t *Tracker) Resume(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.recovered {
		return nil, ErrRecoveryPending
	}
	s, err := t.recovery.Resume(ctx, id)
	if err != nil {
		return nil, err
	}
	t.notify(s)
	return s, nil
}

// Start creates an ACTIVE session from a plan.
func (t *Tracker) Start(ctx context.Context, req StartRequest) (*models.WorkoutSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.recovered {
		return nil, ErrRecoveryPending
	}

	open, err := t.store.GetOpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking open session: %w", err)
	}
	if open != nil {
		return nil, ErrSessionInProgress
	}

	s := models.WorkoutSession{
		ID:         uuid.New(),
		StartedAt:  t.now(),
		Status:     models.StatusActive,
		TemplateID: req.TemplateID,
		Notes:      req.Notes,
	}
	var (
		exercises []models.WorkoutExercise
		sets      []models.WorkoutSet
	)
	for i, ep := range req.Plan.Exercises {
		ex, err := t.catalog.GetExercise(ctx, ep.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("loading exercise %d: %w", ep.ExerciseID, err)
		}
		if ex == nil {
			return nil, &models.ValidationError{Fields: []models.FieldError{
				{Field: fmt.Sprintf("plan.exercises[%d].exercise_id", i), Rule: "exists", Param: fmt.Sprint(ep.ExerciseID)},
			}}
		}

		var ai *int
		if ep.RestSeconds > 0 {
			ai = &ep.RestSeconds
		}
		rest := t.rest.ResolveFor(ctx, *ex, ai)
		we := models.WorkoutExercise{
			ID:               uuid.New(),
			SessionID:        s.ID,
			ExerciseID:       ex.ID,
			OrderIndex:       i,
			RestTimerSeconds: &rest,
			Notes:            ep.Notes,
		}
		exercises = append(exercises, we)
		for j, ps := range ep.Sets {
			sets = append(sets, plannedSet(we.ID, j+1, ps))
		}
	}

	if err := t.store.CreateSession(ctx, s, exercises, sets); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	t.log.Info("workout started", "session_id", s.ID, "exercises", len(exercises), "sets", len(sets))
	t.notify(&s)
	return &s, nil
}

func plannedSet(workoutExerciseID uuid.UUID, number int, ps models.PlannedSet) models.WorkoutSet {
	set := models.WorkoutSet{
		ID:                uuid.New(),
		WorkoutExerciseID: workoutExerciseID,
		SetNumber:         number,
		Type:              ps.Type,
		Status:            models.SetPlanned,
	}
	if set.Type == "" {
		set.Type = models.SetWorking
	}
	if ps.Weight > 0 {
		w := ps.Weight
		set.PlannedWeight = &w
	}
	if ps.Reps > 0 {
		r := ps.Reps
		set.PlannedReps = &r
	}
	return set
}

// Pause pauses the session and its rest countdown.
func (t *Tracker) Pause(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.transition(ctx, id, EventPause)
	if err != nil {
		return nil, err
	}
	t.timer.Pause()
	t.notify(s)
	return s, nil
}

// ResumePaused continues a paused session and its rest countdown.
func (t *Tracker) ResumePaused(ctx context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.transition(ctx, id, EventResume)
	if err != nil {
		return nil, err
	}
	t.timer.Resume()
	t.notify(s)
	return s, nil
}

// Finish completes the session, then detects personal records. Record
// detection failures are logged and do not undo the completion.
func (t *Tracker) Finish(ctx context.Context, id uuid.UUID, notes string) (*FinishResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.transitionWith(ctx, id, EventFinish, func(s *models.WorkoutSession) {
		if notes != "" {
			s.Notes = notes
		}
	})
	if err != nil {
		return nil, err
	}
	t.timer.Cancel()
	t.log.Info("workout finished", "session_id", s.ID, "duration_seconds", s.DurationSeconds)

	res := &FinishResult{Session: *s, Records: []records.DetectedPR{}}
	prs, err := t.records.Detect(ctx, s.ID)
	if err != nil {
		t.log.Error("detecting personal records", "session_id", s.ID, "error", err)
	} else {
		for _, pr := range prs {
			if err := t.store.MarkPersonalRecord(ctx, pr.SetID); err != nil {
				t.log.Warn("flagging personal record set", "set_id", pr.SetID, "error", err)
			}
		}
		if prs != nil {
			res.Records = prs
		}
	}
	t.notify(nil)
	return res, nil
}

func (t *Tracker) transition(ctx context.Context, id uuid.UUID, kind EventKind) (*models.WorkoutSession, error) {
	return t.transitionWith(ctx, id, kind, nil)
}

// transitionWith runs the state machine and persists the result. The store
// is not touched when the transition is rejected.
func (t *Tracker) transitionWith(ctx context.Context, id uuid.UUID, kind EventKind, edit func(*models.WorkoutSession)) (*models.WorkoutSession, error) {
	if !t.recovered {
		return nil, ErrRecoveryPending
	}
	s, err := t.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if s == nil {
		return nil, ErrNoActiveSession
	}
	st, ok := StateOf(*s)
	if !ok {
		return nil, fmt.Errorf("%w: %s session cannot %s", ErrInvalidTransition, s.Status, kind)
	}
	next, ok := Transition(st, Event{Kind: kind, At: t.now()})
	if !ok {
		return nil, fmt.Errorf("%w: %s session cannot %s", ErrInvalidTransition, st.Phase, kind)
	}

	updated := *s
	next.apply(&updated)
	if edit != nil {
		edit(&updated)
	}
	if err := t.store.UpdateSession(ctx, updated); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return &updated, nil
}

// openSession returns the open session or ErrNoActiveSession.
func (t *Tracker) openSession(ctx context.Context) (*models.WorkoutSession, error) {
	if !t.recovered {
		return nil, ErrRecoveryPending
	}
	s, err := t.store.GetOpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading open session: %w", err)
	}
	if s == nil {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// ownedSet loads a set and its exercise, checking both belong to the open
// session.
func (t *Tracker) ownedSet(ctx context.Context, setID uuid.UUID) (*models.WorkoutSession, *models.WorkoutSet, *models.WorkoutExercise, error) {
	s, err := t.openSession(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	set, err := t.store.GetSet(ctx, setID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading set: %w", err)
	}
	if set == nil {
		return nil, nil, nil, ErrSetNotFound
	}
	we, err := t.ownedExercise(ctx, s.ID, set.WorkoutExerciseID)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, set, we, nil
}

func (t *Tracker) ownedExercise(ctx context.Context, sessionID, workoutExerciseID uuid.UUID) (*models.WorkoutExercise, error) {
	exercises, err := t.store.GetSessionExercises(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session exercises: %w", err)
	}
	for i := range exercises {
		if exercises[i].ID == workoutExerciseID {
			return &exercises[i], nil
		}
	}
	return nil, ErrSetNotFound
}

// CompleteSet logs a set and starts the exercise's rest countdown.
func (t *Tracker) CompleteSet(ctx context.Context, setID uuid.UUID, entry SetLog) (*SetResult, error) {
	if err := models.Validate(entry); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s, set, we, err := t.ownedSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if s.Status == models.StatusPaused {
		return nil, ErrSessionPaused
	}
	if set.Status == models.SetSkipped {
		return nil, fmt.Errorf("%w: unskip the set before logging it", ErrInvalidSetStatus)
	}

	if err := t.store.CompleteSet(ctx, setID, entry.Weight, entry.Reps); err != nil {
		return nil, fmt.Errorf("completing set: %w", err)
	}
	set.Status = models.SetCompleted
	set.ActualWeight = &entry.Weight
	set.ActualReps = &entry.Reps

	res := &SetResult{Set: *set}
	if we.RestTimerSeconds != nil && *we.RestTimerSeconds > 0 {
		res.RestSeconds = *we.RestTimerSeconds
		t.timer.Start(time.Duration(res.RestSeconds) * time.Second)
	}
	return res, nil
}

// SkipSet marks a planned set as skipped.
func (t *Tracker) SkipSet(ctx context.Context, setID uuid.UUID) (*SetResult, error) {
	return t.setStatus(ctx, setID, models.SetPlanned, models.SetSkipped)
}

// UnskipSet returns a skipped set to planned.
func (t *Tracker) UnskipSet(ctx context.Context, setID uuid.UUID) (*SetResult, error) {
	return t.setStatus(ctx, setID, models.SetSkipped, models.SetPlanned)
}

func (t *Tracker) setStatus(ctx context.Context, setID uuid.UUID, from, to models.SetStatus) (*SetResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, set, _, err := t.ownedSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if set.Status != from {
		return nil, fmt.Errorf("%w: %s set cannot become %s", ErrInvalidSetStatus, set.Status, to)
	}
	if err := t.store.UpdateSetStatus(ctx, setID, to); err != nil {
		return nil, fmt.Errorf("updating set status: %w", err)
	}
	set.Status = to
	return &SetResult{Set: *set}, nil
}

// DeleteSet removes a set from the open session.
func (t *Tracker) DeleteSet(ctx context.Context, setID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, _, _, err := t.ownedSet(ctx, setID); err != nil {
		return err
	}
	if err := t.store.DeleteSet(ctx, setID); err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	return nil
}

// AddSet appends a planned set to an exercise of the open session.
func (t *Tracker) AddSet(ctx context.Context, workoutExerciseID uuid.UUID, ps models.PlannedSet) (*models.WorkoutSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.openSession(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := t.ownedExercise(ctx, s.ID, workoutExerciseID); err != nil {
		return nil, err
	}
	sets, err := t.store.GetSets(ctx, workoutExerciseID)
	if err != nil {
		return nil, fmt.Errorf("loading sets: %w", err)
	}
	number := 1
	for _, existing := range sets {
		number = max(number, existing.SetNumber+1)
	}
	set := plannedSet(workoutExerciseID, number, ps)
	if err := t.store.InsertSet(ctx, set); err != nil {
		return nil, fmt.Errorf("inserting set: %w", err)
	}
	return &set, nil
}

// RemoveExercise deletes an exercise and its sets from the open session.
func (t *Tracker) RemoveExercise(ctx context.Context, workoutExerciseID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.openSession(ctx)
	if err != nil {
		return err
	}
	if _, err := t.ownedExercise(ctx, s.ID, workoutExerciseID); err != nil {
		return err
	}
	if err := t.store.DeleteExercise(ctx, workoutExerciseID); err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	return nil
}

// SaveExerciseNotes auto-saves notes for an exercise of the open session.
func (t *Tracker) SaveExerciseNotes(ctx context.Context, workoutExerciseID uuid.UUID, notes string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.openSession(ctx)
	if err != nil {
		return err
	}
	if _, err := t.ownedExercise(ctx, s.ID, workoutExerciseID); err != nil {
		return err
	}
	if err := t.store.UpdateExerciseNotes(ctx, workoutExerciseID, notes); err != nil {
		t.log.Warn("saving exercise notes", "workout_exercise_id", workoutExerciseID, "error", err)
		return fmt.Errorf("saving notes: %w", err)
	}
	return nil
}

// Views returns a session's exercises and sets with the current set
// projected as IN_PROGRESS.
func (t *Tracker) Views(ctx context.Context, sessionID uuid.UUID) ([]ExerciseView, error) {
	exercises, err := t.store.GetSessionExercises(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session exercises: %w", err)
	}
	views := make([]ExerciseView, 0, len(exercises))
	for _, we := range exercises {
		sets, err := t.store.GetSets(ctx, we.ID)
		if err != nil {
			return nil, fmt.Errorf("loading sets: %w", err)
		}
		views = append(views, ExerciseView{Exercise: we, Sets: sets})
	}
	return ProjectCurrentSet(views), nil
}

// SkipRest ends the rest countdown now.
func (t *Tracker) SkipRest() bool { return t.timer.Skip() }

// ExtendRest adds d to the running rest countdown.
func (t *Tracker) ExtendRest(d time.Duration) bool { return t.timer.Extend(d) }

// RestRemaining is the time left on the rest countdown.
func (t *Tracker) RestRemaining() time.Duration { return t.timer.Remaining() }
