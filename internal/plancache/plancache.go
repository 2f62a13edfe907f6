// Package plancache stores AI-generated plans on the local disk, in SQLite
// or Badger, keyed by exercise-set hash and experience level.
package plancache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meltforce/freecoach/internal/models"
)

// Cache is a plan cache backend.
type Cache interface {
	GetCachedPlan(ctx context.Context, hash string, level models.ExperienceLevel) (*models.CachedPlan, error)
	SaveCachedPlan(ctx context.Context, p models.CachedPlan) error
	DeleteCachedPlansBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Open opens the cache backend named by driver at path.
func Open(driver, path string, ttl time.Duration, log *slog.Logger) (Cache, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(path)
	case DriverBadger:
		return OpenBadger(path, ttl, log)
	default:
		return nil, fmt.Errorf("unknown plan cache driver %q", driver)
	}
}
