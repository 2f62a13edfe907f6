package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog map[int64]models.Exercise

func (c fakeCatalog) GetExercisesByIDs(_ context.Context, ids []int64) ([]models.Exercise, error) {
	var out []models.Exercise
	for _, id := range ids {
		if e, ok := c[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	profile *models.UserProfile
	err     error
}

func (f fakeProfiles) GetProfile(context.Context) (*models.UserProfile, error) { return f.profile, f.err }

type fakeHistory []models.ExerciseHistory

func (f fakeHistory) GetExerciseHistories(context.Context, []int64, int) ([]models.ExerciseHistory, error) {
	return f, nil
}

type recordingGen struct {
	result Result
	got    models.PlanRequest
}

func (g *recordingGen) Generate(_ context.Context, req models.PlanRequest) Result {
	g.got = req
	return g.result
}

var catalog = fakeCatalog{benchPress.ID: benchPress, row.ID: row, curl.ID: curl, crunch.ID: crunch}

// TestPipelineBuildOrdersAndValidates runs the full chain with a baseline plan.
func TestPipelineBuildOrdersAndValidates(t *testing.T) {
	profile := &models.UserProfile{ExperienceLevel: models.LevelBeginner}
	o := NewOrchestrator(nil, newMemCache(), Baseline{}, staticNet(false), Options{}, discardLogger())
	p := NewPipeline(catalog, fakeProfiles{profile: profile}, fakeHistory(nil), o, discardLogger())

	b, err := p.Build(context.Background(), BuildRequest{ExerciseIDs: []int64{crunch.ID, curl.ID, row.ID, benchPress.ID}})
	require.NoError(t, err)
	assert.Equal(t, SourceBaseline, b.Source)
	assert.Equal(t, models.ModelLinear, b.DayPlan.Model)
	assert.Equal(t, models.DeloadNotNeeded, b.Deload)
	require.NotNil(t, b.Plan)

	var order []int64
	for _, ep := range b.Plan.Exercises {
		order = append(order, ep.ExerciseID)
	}
	assert.Equal(t, []int64{benchPress.ID, row.ID, curl.ID, crunch.ID}, order)
	assert.Empty(t, b.Violations)
}

// TestPipelineBuildPassesDeloadAndDayType forwards periodization decisions.
func TestPipelineBuildPassesDeloadAndDayType(t *testing.T) {
	gen := &recordingGen{result: Result{Source: SourceManual}}
	p := NewPipeline(catalog, fakeProfiles{profile: &models.UserProfile{ExperienceLevel: models.LevelIntermediate}}, fakeHistory(nil), gen, discardLogger())

	b, err := p.Build(context.Background(), BuildRequest{ExerciseIDs: []int64{benchPress.ID}, DeloadRequested: true})
	require.NoError(t, err)
	assert.Equal(t, SourceManual, b.Source)
	assert.Nil(t, b.Plan)
	assert.NotNil(t, b.Violations)

	assert.Equal(t, models.DeloadUserRequested, gen.got.Deload)
	assert.Equal(t, models.DayHypertrophy, gen.got.DayType)
	assert.Equal(t, models.LevelIntermediate, gen.got.Level)
}

// TestPipelineBuildReportsViolations surfaces safety findings on the plan.
func TestPipelineBuildReportsViolations(t *testing.T) {
	heavy := &models.GeneratedPlan{Exercises: []models.ExercisePlan{{
		ExerciseID: benchPress.ID,
		Sets:       []models.PlannedSet{{Type: models.SetWorking, Weight: 200, Reps: 5}},
	}}}
	gen := &recordingGen{result: Result{Source: SourceAI, Plan: heavy}}
	history := fakeHistory{lastSession(benchPress.ID, 50, 5)}
	p := NewPipeline(catalog, fakeProfiles{}, history, gen, discardLogger())

	b, err := p.Build(context.Background(), BuildRequest{ExerciseIDs: []int64{benchPress.ID}})
	require.NoError(t, err)
	require.NotEmpty(t, b.Violations)
	assert.Equal(t, models.ViolationWeightJump, b.Violations[0].Type)
}

// TestPipelineBuildInputErrors rejects empty and unknown exercise lists.
func TestPipelineBuildInputErrors(t *testing.T) {
	p := NewPipeline(catalog, fakeProfiles{}, fakeHistory(nil), &recordingGen{}, discardLogger())

	_, err := p.Build(context.Background(), BuildRequest{})
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = p.Build(context.Background(), BuildRequest{ExerciseIDs: []int64{benchPress.ID, 404}})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "exists", ve.Fields[0].Rule)
}

// TestPipelineBuildProfileError wraps store failures.
func TestPipelineBuildProfileError(t *testing.T) {
	p := NewPipeline(catalog, fakeProfiles{err: errors.New("db down")}, fakeHistory(nil), &recordingGen{}, discardLogger())
	_, err := p.Build(context.Background(), BuildRequest{ExerciseIDs: []int64{benchPress.ID}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading profile")
}
