// Package templates manages saved workout templates.
package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meltforce/freecoach/internal/models"
)

// ErrNotFound is returned for unknown template ids.
var ErrNotFound = errors.New("template not found")

// Store persists templates.
type Store interface {
	CreateTemplate(ctx context.Context, t models.WorkoutTemplate) (int64, error)
	// GetTemplate returns nil when the id is unknown.
	GetTemplate(ctx context.Context, id int64) (*models.WorkoutTemplate, error)
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error)
	// DeleteTemplate reports whether a row was removed.
	DeleteTemplate(ctx context.Context, id int64) (bool, error)
}

// ExerciseChecker confirms exercise ids exist in the catalog.
type ExerciseChecker interface {
	GetExercisesByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error)
}

// Service validates and stores templates.
type Service struct {
	store   Store
	catalog ExerciseChecker
	now     func() time.Time
	log     *slog.Logger
}

// NewService creates a Service.
func NewService(store Store, catalog ExerciseChecker, log *slog.Logger) *Service {
	return &Service{store: store, catalog: catalog, now: time.Now, log: log}
}

// Create validates and saves a template. The name is trimmed before it is
// checked; nothing else is corrected.
func (s *Service) Create(ctx context.Context, name string, exerciseIDs []int64) (*models.WorkoutTemplate, error) {
	t := models.WorkoutTemplate{
		Name:        strings.TrimSpace(name),
		ExerciseIDs: exerciseIDs,
		CreatedAt:   s.now(),
	}
	if err := models.Validate(t); err != nil {
		return nil, err
	}

	found, err := s.catalog.GetExercisesByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("checking exercises: %w", err)
	}
	known := make(map[int64]bool, len(found))
	for _, e := range found {
		known[e.ID] = true
	}
	for _, id := range exerciseIDs {
		if !known[id] {
			return nil, &models.ValidationError{Fields: []models.FieldError{
				{Field: "exercise_ids", Rule: "exists", Param: fmt.Sprint(id)},
			}}
		}
	}

	id, err := s.store.CreateTemplate(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	t.ID = id
	s.log.Info("template created", "id", id, "name", t.Name, "exercises", len(exerciseIDs))
	return &t, nil
}

// Get returns a template or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*models.WorkoutTemplate, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// List returns all templates.
func (s *Service) List(ctx context.Context) ([]models.WorkoutTemplate, error) {
	ts, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return ts, nil
}

// Delete removes a template or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
