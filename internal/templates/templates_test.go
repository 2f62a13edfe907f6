package templates

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows map[int64]models.WorkoutTemplate
	next int64
}

func (m *memStore) CreateTemplate(_ context.Context, t models.WorkoutTemplate) (int64, error) {
	m.next++
	t.ID = m.next
	m.rows[t.ID] = t
	return t.ID, nil
}

func (m *memStore) GetTemplate(_ context.Context, id int64) (*models.WorkoutTemplate, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memStore) ListTemplates(context.Context) ([]models.WorkoutTemplate, error) {
	var out []models.WorkoutTemplate
	for _, t := range m.rows {
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) DeleteTemplate(_ context.Context, id int64) (bool, error) {
	_, ok := m.rows[id]
	delete(m.rows, id)
	return ok, nil
}

// allExercises pretends every positive id below 100 exists.
type allExercises struct{}

func (allExercises) GetExercisesByIDs(_ context.Context, ids []int64) ([]models.Exercise, error) {
	var out []models.Exercise
	for _, id := range ids {
		if id > 0 && id < 100 {
			out = append(out, models.Exercise{ID: id})
		}
	}
	return out, nil
}

func newService() (*Service, *memStore) {
	store := &memStore{rows: map[int64]models.WorkoutTemplate{}}
	return NewService(store, allExercises{}, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func ids(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

// TestCreateBounds rejects names and exercise lists outside their bounds.
func TestCreateBounds(t *testing.T) {
	tests := []struct {
		name      string
		tmplName  string
		exercises []int64
		wantErr   bool
	}{
		{"valid", "Push A", ids(3), false},
		{"name at limit", strings.Repeat("a", 60), ids(1), false},
		{"twelve exercises", "Full", ids(12), false},
		{"empty name", "", ids(3), true},
		{"blank name", "   ", ids(3), true},
		{"name too long", strings.Repeat("a", 61), ids(3), true},
		{"no exercises", "Empty", nil, true},
		{"thirteen exercises", "Too many", ids(13), true},
		{"unknown exercise", "Ghost", []int64{1, 404}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService()
			got, err := svc.Create(context.Background(), tt.tmplName, tt.exercises)
			if tt.wantErr {
				var ve *models.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Empty(t, store.rows)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, got.ID)
			assert.Len(t, store.rows, 1)
		})
	}
}

// TestGetAndDelete returns ErrNotFound for missing templates.
func TestGetAndDelete(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Pull", []int64{4, 5})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, got.ExerciseIDs)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
