package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/records"
)

// memStore is an in-memory Store. failNext makes the next write fail.
type memStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]models.WorkoutSession
	exercises map[uuid.UUID]models.WorkoutExercise
	sets      map[uuid.UUID]models.WorkoutSet
	failNext  error
	writes    int
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  map[uuid.UUID]models.WorkoutSession{},
		exercises: map[uuid.UUID]models.WorkoutExercise{},
		sets:      map[uuid.UUID]models.WorkoutSet{},
	}
}

func (m *memStore) write() error {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	m.writes++
	return nil
}

func (m *memStore) GetOpenSession(context.Context) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Status.IsOpen() {
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetSession(_ context.Context, id uuid.UUID) (*models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) CreateSession(_ context.Context, s models.WorkoutSession, exercises []models.WorkoutExercise, sets []models.WorkoutSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.sessions[s.ID] = s
	for _, e := range exercises {
		m.exercises[e.ID] = e
	}
	for _, st := range sets {
		m.sets[st.ID] = st
	}
	return nil
}

func (m *memStore) UpdateSession(_ context.Context, s models.WorkoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) UpdateSessionStatus(_ context.Context, id uuid.UUID, status models.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	s := m.sessions[id]
	s.Status = status
	m.sessions[id] = s
	return nil
}

func (m *memStore) ListSessionsStartedBefore(_ context.Context, cutoff time.Time, status models.SessionStatus) ([]models.WorkoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkoutSession
	for _, s := range m.sessions {
		if s.Status == status && s.StartedAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) GetSessionExercises(_ context.Context, sessionID uuid.UUID) ([]models.WorkoutExercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkoutExercise
	for _, e := range m.exercises {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b models.WorkoutExercise) int { return a.OrderIndex - b.OrderIndex })
	return out, nil
}

func (m *memStore) InsertExercise(_ context.Context, e models.WorkoutExercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.exercises[e.ID] = e
	return nil
}

func (m *memStore) DeleteExercise(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	delete(m.exercises, id)
	for sid, s := range m.sets {
		if s.WorkoutExerciseID == id {
			delete(m.sets, sid)
		}
	}
	return nil
}

func (m *memStore) UpdateExerciseNotes(_ context.Context, id uuid.UUID, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	e := m.exercises[id]
	e.Notes = notes
	m.exercises[id] = e
	return nil
}

func (m *memStore) GetSets(_ context.Context, workoutExerciseID uuid.UUID) ([]models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkoutSet
	for _, s := range m.sets {
		if s.WorkoutExerciseID == workoutExerciseID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.WorkoutSet) int { return a.SetNumber - b.SetNumber })
	return out, nil
}

func (m *memStore) GetSet(_ context.Context, id uuid.UUID) (*models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sets[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) InsertSet(_ context.Context, s models.WorkoutSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.sets[s.ID] = s
	return nil
}

func (m *memStore) DeleteSet(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	delete(m.sets, id)
	return nil
}

func (m *memStore) CompleteSet(_ context.Context, id uuid.UUID, weight float64, reps int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	s := m.sets[id]
	s.Status = models.SetCompleted
	s.ActualWeight = &weight
	s.ActualReps = &reps
	m.sets[id] = s
	return nil
}

func (m *memStore) UpdateSetStatus(_ context.Context, id uuid.UUID, status models.SetStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	s := m.sets[id]
	s.Status = status
	m.sets[id] = s
	return nil
}

func (m *memStore) MarkPersonalRecord(_ context.Context, setID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	s := m.sets[setID]
	s.IsPersonalRecord = true
	m.sets[setID] = s
	return nil
}

func (m *memStore) add(s models.WorkoutSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *memStore) session(id uuid.UUID) models.WorkoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

type fakeCatalog map[int64]models.Exercise

func (c fakeCatalog) GetExercise(_ context.Context, id int64) (*models.Exercise, error) {
	e, ok := c[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

type fixedRest int

func (r fixedRest) ResolveFor(_ context.Context, _ models.Exercise, ai *int) int {
	if ai != nil && *ai > 0 {
		return *ai
	}
	return int(r)
}

type fakeDetector struct {
	prs   []records.DetectedPR
	err   error
	calls int
}

func (d *fakeDetector) Detect(context.Context, uuid.UUID) ([]records.DetectedPR, error) {
	d.calls++
	return d.prs, d.err
}

var errWrite = errors.New("write failed")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
