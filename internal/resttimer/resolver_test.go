package resttimer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

var (
	compound  = models.Exercise{ID: 1, MovementType: models.MovementCompound, PrimaryGroupID: models.MuscleGroupLegs}
	isolation = models.Exercise{ID: 2, MovementType: models.MovementIsolation, PrimaryGroupID: models.MuscleGroupArms}
	coreEx    = models.Exercise{ID: 3, MovementType: models.MovementCompound, PrimaryGroupID: models.CoreMuscleGroupID}
)

// TestResolvePriorityExhaustive walks all 16 present/absent combinations of
// the three user-facing candidates and checks the first positive one wins.
func TestResolvePriorityExhaustive(t *testing.T) {
	const ai, override, global = 45, 100, 150
	baseline := BaselineSeconds(compound, models.LevelIntermediate)

	for mask := range 16 {
		var aiP, ovP, glP *int
		// Bit 3 toggles a present-but-zero AI value, which must be ignored.
		if mask&1 != 0 {
			aiP = intPtr(ai)
		} else if mask&8 != 0 {
			aiP = intPtr(0)
		}
		if mask&2 != 0 {
			ovP = intPtr(override)
		}
		if mask&4 != 0 {
			glP = intPtr(global)
		}

		want := baseline
		switch {
		case aiP != nil && *aiP > 0:
			want = ai
		case ovP != nil:
			want = override
		case glP != nil:
			want = global
		}

		t.Run(fmt.Sprintf("mask_%04b", mask), func(t *testing.T) {
			assert.Equal(t, want, Resolve(compound, models.LevelIntermediate, aiP, ovP, glP))
		})
	}
}

// TestResolveIgnoresNonPositive verifies zero and negative candidates fall
// through to the next level.
func TestResolveIgnoresNonPositive(t *testing.T) {
	got := Resolve(isolation, models.LevelBeginner, intPtr(-5), intPtr(0), intPtr(-1))
	assert.Equal(t, 60, got)
}

// TestBaselineSeconds verifies the CSCS baseline table.
func TestBaselineSeconds(t *testing.T) {
	tests := []struct {
		name  string
		ex    models.Exercise
		level models.ExperienceLevel
		want  int
	}{
		{"core beginner", coreEx, models.LevelBeginner, 60},
		{"core advanced", coreEx, models.LevelAdvanced, 60},
		{"compound beginner", compound, models.LevelBeginner, 90},
		{"compound intermediate", compound, models.LevelIntermediate, 120},
		{"compound advanced", compound, models.LevelAdvanced, 180},
		{"isolation beginner", isolation, models.LevelBeginner, 60},
		{"isolation intermediate", isolation, models.LevelIntermediate, 75},
		{"isolation advanced", isolation, models.LevelAdvanced, 75},
		{"missing level defaults to intermediate", compound, "", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaselineSeconds(tt.ex, tt.level))
		})
	}
}

type fakeProfiles struct {
	profile *models.UserProfile
	err     error
}

func (f fakeProfiles) GetProfile(context.Context) (*models.UserProfile, error) {
	return f.profile, f.err
}

type fakeOverrides map[int64]int

func (f fakeOverrides) GetRestOverride(_ context.Context, id int64) (*int, error) {
	if v, ok := f[id]; ok {
		return &v, nil
	}
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestResolverUsesStores verifies the resolver reads the per-exercise
// override and the profile's global default and level.
func TestResolverUsesStores(t *testing.T) {
	profile := &models.UserProfile{ExperienceLevel: models.LevelAdvanced, GlobalRestSeconds: intPtr(200)}
	r := NewResolver(fakeProfiles{profile: profile}, fakeOverrides{2: 30}, discardLogger())
	ctx := context.Background()

	assert.Equal(t, 30, r.ResolveFor(ctx, isolation, nil))
	assert.Equal(t, 200, r.ResolveFor(ctx, compound, nil))
	assert.Equal(t, 50, r.ResolveFor(ctx, compound, intPtr(50)))

	profile.GlobalRestSeconds = nil
	assert.Equal(t, 180, r.ResolveFor(ctx, compound, nil))
}

// TestResolverMissingProfile verifies a missing or failing profile store
// falls back to the intermediate baseline.
func TestResolverMissingProfile(t *testing.T) {
	ctx := context.Background()

	r := NewResolver(fakeProfiles{}, nil, discardLogger())
	assert.Equal(t, 120, r.ResolveFor(ctx, compound, nil))

	r = NewResolver(fakeProfiles{err: errors.New("db down")}, nil, discardLogger())
	assert.Equal(t, 120, r.ResolveFor(ctx, compound, nil))
}
