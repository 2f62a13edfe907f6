// Package plan generates workout plans through the AI, cache, baseline and
// manual fallback chain, and runs the full plan-building pipeline.
package plan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/meltforce/freecoach/internal/models"
)

// Source identifies which fallback level produced a plan.
type Source string

const (
	SourceAI       Source = "AI_GENERATED"
	SourceCached   Source = "CACHED"
	SourceBaseline Source = "BASELINE"
	SourceManual   Source = "MANUAL"
)

// Result is the outcome of Generate. Plan is nil for SourceManual.
type Result struct {
	Source Source                `json:"source"`
	Plan   *models.GeneratedPlan `json:"plan,omitempty"`
}

// ErrUnavailable marks a collaborator that could not produce a plan.
var ErrUnavailable = errors.New("plan provider unavailable")

// CacheTTL is how long an AI plan stays in the cache.
const CacheTTL = 7 * 24 * time.Hour

// AIProvider produces a plan from a remote model. Any error means the
// provider is unavailable for this request.
type AIProvider interface {
	GeneratePlan(ctx context.Context, req models.PlanRequest) (*models.GeneratedPlan, error)
}

// CacheStore persists AI plans keyed by exercise-set hash and level.
type CacheStore interface {
	// GetCachedPlan returns nil when there is no entry.
	GetCachedPlan(ctx context.Context, hash string, level models.ExperienceLevel) (*models.CachedPlan, error)
	SaveCachedPlan(ctx context.Context, p models.CachedPlan) error
	// DeleteCachedPlansBefore removes entries created before cutoff and
	// returns how many were removed.
	DeleteCachedPlansBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// BaselineGenerator builds a deterministic offline plan, or nil when it
// cannot.
type BaselineGenerator interface {
	Generate(req models.PlanRequest) *models.GeneratedPlan
}

// ConnectivityChecker reports whether the AI provider is reachable.
type ConnectivityChecker interface {
	IsOnline(ctx context.Context) bool
}

// CacheKey hashes the sorted, de-duplicated stable ids of the exercises.
// The caller's ordering never affects the key. Ids are NUL-separated so an
// id containing a comma cannot alias two shorter ids.
func CacheKey(exercises []models.Exercise) string {
	ids := make([]string, 0, len(exercises))
	for _, e := range exercises {
		ids = append(ids, e.StableID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, "\x00")))
	return hex.EncodeToString(sum[:])
}

// requestLevel returns the explicit request level or the profile's.
func requestLevel(req models.PlanRequest) models.ExperienceLevel {
	if _, ok := models.ParseExperienceLevel(string(req.Level)); ok {
		return req.Level
	}
	return req.Profile.Level()
}
