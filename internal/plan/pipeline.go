package plan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meltforce/freecoach/internal/metrics"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/ordering"
	"github.com/meltforce/freecoach/internal/periodization"
	"github.com/meltforce/freecoach/internal/safety"
)

// HistoryWindow is how many recent sessions per exercise feed the
// periodization and deload heuristics.
const HistoryWindow = 16

// Catalog reads exercise reference data.
type Catalog interface {
	GetExercisesByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error)
}

// ProfileStore reads the singleton user profile. A nil profile means
// onboarding has not happened yet.
type ProfileStore interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
}

// HistoryStore reads completed-session history per exercise.
type HistoryStore interface {
	GetExerciseHistories(ctx context.Context, exerciseIDs []int64, sessionLimit int) ([]models.ExerciseHistory, error)
}

// Generator produces a plan for a fully assembled request.
type Generator interface {
	Generate(ctx context.Context, req models.PlanRequest) Result
}

// BuildRequest is the caller's input to Pipeline.Build.
type BuildRequest struct {
	ExerciseIDs          []int64 `json:"exercise_ids" validate:"required,min=1,max=30,dive,gt=0"`
	DeloadRequested      bool    `json:"deload_requested,omitempty"`
	WeeksSinceLastDeload *int    `json:"weeks_since_last_deload,omitempty" validate:"omitempty,min=0"`
}

// Build is a plan together with the decisions that shaped it.
type Build struct {
	DayPlan    models.DayPlan           `json:"day_plan"`
	Deload     models.DeloadStatus      `json:"deload"`
	Source     Source                   `json:"source"`
	Plan       *models.GeneratedPlan    `json:"plan,omitempty"`
	Violations []models.SafetyViolation `json:"violations"`
}

// Pipeline runs periodization, deload detection, generation, safety
// validation and ordering in that order.
type Pipeline struct {
	catalog  Catalog
	profiles ProfileStore
	history  HistoryStore
	gen      Generator
	log      *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(catalog Catalog, profiles ProfileStore, history HistoryStore, gen Generator, log *slog.Logger) *Pipeline {
	return &Pipeline{catalog: catalog, profiles: profiles, history: history, gen: gen, log: log}
}

// Assemble loads everything a plan request needs and runs periodization and
// deload detection, without generating.
func (p *Pipeline) Assemble(ctx context.Context, br BuildRequest) (models.PlanRequest, models.DayPlan, error) {
	if err := models.Validate(br); err != nil {
		return models.PlanRequest{}, models.DayPlan{}, err
	}

	exercises, err := p.catalog.GetExercisesByIDs(ctx, br.ExerciseIDs)
	if err != nil {
		return models.PlanRequest{}, models.DayPlan{}, fmt.Errorf("loading exercises: %w", err)
	}
	if missing := missingIDs(br.ExerciseIDs, exercises); len(missing) > 0 {
		return models.PlanRequest{}, models.DayPlan{}, &models.ValidationError{Fields: []models.FieldError{
			{Field: "exercise_ids", Rule: "exists", Param: fmt.Sprint(missing)},
		}}
	}

	profile, err := p.profiles.GetProfile(ctx)
	if err != nil {
		return models.PlanRequest{}, models.DayPlan{}, fmt.Errorf("loading profile: %w", err)
	}
	level := profile.Level()

	histories, err := p.history.GetExerciseHistories(ctx, br.ExerciseIDs, HistoryWindow)
	if err != nil {
		return models.PlanRequest{}, models.DayPlan{}, fmt.Errorf("loading histories: %w", err)
	}

	day := periodization.DetermineDayType(level, histories)
	deload := periodization.DetectDeload(level, br.WeeksSinceLastDeload, histories, br.DeloadRequested)

	return models.PlanRequest{
		Exercises: exercises,
		Level:     level,
		Profile:   profile,
		Histories: histories,
		DayType:   day.DayType,
		Deload:    deload,
	}, day, nil
}

// Build produces an ordered, validated plan. Only loading and input errors
// are returned; generation itself always yields a Build, possibly with
// SourceManual and no plan.
func (p *Pipeline) Build(ctx context.Context, br BuildRequest) (*Build, error) {
	req, day, err := p.Assemble(ctx, br)
	if err != nil {
		return nil, err
	}

	res := p.gen.Generate(ctx, req)
	out := &Build{DayPlan: day, Deload: req.Deload, Source: res.Source, Violations: []models.SafetyViolation{}}
	if res.Plan == nil {
		return out, nil
	}

	ordered := ordering.OrderPlan(*res.Plan, req.Exercises)
	out.Plan = &ordered
	out.Violations = safety.Validate(ordered, req)
	for _, v := range out.Violations {
		metrics.SafetyViolations.WithLabelValues(string(v.Type), string(v.Severity)).Inc()
	}
	if len(out.Violations) > 0 {
		p.log.Warn("plan has safety violations", "count", len(out.Violations), "source", res.Source)
	}
	return out, nil
}

func missingIDs(want []int64, got []models.Exercise) []int64 {
	have := make(map[int64]bool, len(got))
	for _, e := range got {
		have[e.ID] = true
	}
	var missing []int64
	for _, id := range want {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
