package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/safety"
	"github.com/meltforce/freecoach/internal/storage"
)

// Planner builds plans and the decisions behind them.
type Planner interface {
	Assemble(ctx context.Context, br plan.BuildRequest) (models.PlanRequest, models.DayPlan, error)
	Build(ctx context.Context, br plan.BuildRequest) (*plan.Build, error)
}

// RestResolver resolves rest durations.
type RestResolver interface {
	ResolveFor(ctx context.Context, ex models.Exercise, aiPlanSeconds *int) int
}

// RecordReader reads personal records.
type RecordReader interface {
	Best(ctx context.Context, exerciseID int64) (*models.PersonalRecord, error)
}

// Catalog reads exercises and training volume.
type Catalog interface {
	GetExercise(ctx context.Context, id int64) (*models.Exercise, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.VolumeSummaryPeriod, error)
}

// Local serves tools from in-process components.
type Local struct {
	Planner Planner
	Rest    RestResolver
	Records RecordReader
	Catalog Catalog
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) BuildPlan(ctx context.Context, br plan.BuildRequest) (*plan.Build, error) {
	return l.Planner.Build(ctx, br)
}

func (l *Local) ValidatePlan(ctx context.Context, p models.GeneratedPlan) ([]models.SafetyViolation, error) {
	ids := make([]int64, 0, len(p.Exercises))
	for _, ep := range p.Exercises {
		ids = append(ids, ep.ExerciseID)
	}
	req, _, err := l.Planner.Assemble(ctx, plan.BuildRequest{ExerciseIDs: ids})
	if err != nil {
		return nil, err
	}
	return safety.Validate(p, req), nil
}

func (l *Local) DayPlan(ctx context.Context, exerciseIDs []int64) (*DayPlanResult, error) {
	req, day, err := l.Planner.Assemble(ctx, plan.BuildRequest{ExerciseIDs: exerciseIDs})
	if err != nil {
		return nil, err
	}
	return &DayPlanResult{ExperienceLevel: req.Level, DayPlan: day}, nil
}

func (l *Local) Deload(ctx context.Context, br plan.BuildRequest) (*DeloadResult, error) {
	req, _, err := l.Planner.Assemble(ctx, br)
	if err != nil {
		return nil, err
	}
	return &DeloadResult{Status: req.Deload, Recommended: req.Deload.Recommended()}, nil
}

func (l *Local) RestSeconds(ctx context.Context, exerciseID int64) (int, error) {
	ex, err := l.Catalog.GetExercise(ctx, exerciseID)
	if err != nil {
		return 0, err
	}
	if ex == nil {
		return 0, fmt.Errorf("exercise %d not found", exerciseID)
	}
	return l.Rest.ResolveFor(ctx, *ex, nil), nil
}

func (l *Local) BestRecord(ctx context.Context, exerciseID int64) (*models.PersonalRecord, error) {
	return l.Records.Best(ctx, exerciseID)
}

func (l *Local) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	return l.Catalog.ListExercises(ctx)
}

func (l *Local) GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.VolumeSummaryPeriod, error) {
	return l.Catalog.GetVolumeSummary(ctx, start, end, bucket)
}
