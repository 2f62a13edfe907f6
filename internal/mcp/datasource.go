package mcp

import (
	"context"
	"time"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/meltforce/freecoach/internal/plan"
	"github.com/meltforce/freecoach/internal/storage"
)

// DataSource abstracts the coaching engine for MCP tools. Both Local
// (in-process) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	BuildPlan(ctx context.Context, br plan.BuildRequest) (*plan.Build, error)
	ValidatePlan(ctx context.Context, p models.GeneratedPlan) ([]models.SafetyViolation, error)
	DayPlan(ctx context.Context, exerciseIDs []int64) (*DayPlanResult, error)
	Deload(ctx context.Context, br plan.BuildRequest) (*DeloadResult, error)
	RestSeconds(ctx context.Context, exerciseID int64) (int, error)
	BestRecord(ctx context.Context, exerciseID int64) (*models.PersonalRecord, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string) ([]storage.VolumeSummaryPeriod, error)
}

// DayPlanResult is the periodization decision for the next session.
type DayPlanResult struct {
	ExperienceLevel models.ExperienceLevel `json:"experience_level"`
	DayPlan         models.DayPlan         `json:"day_plan"`
}

// DeloadResult is the deload detector's verdict.
type DeloadResult struct {
	Status      models.DeloadStatus `json:"status"`
	Recommended bool                `json:"recommended"`
}
