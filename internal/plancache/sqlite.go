package plancache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/freecoach/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps cached plans in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the cache database at dir/plancache.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "plancache.db"))
	if err != nil {
		return nil, fmt.Errorf("opening plan cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS cached_plans (
		hash             TEXT NOT NULL,
		experience_level TEXT NOT NULL,
		plan             TEXT NOT NULL,
		created_at       INTEGER NOT NULL,
		PRIMARY KEY (hash, experience_level)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating plan cache table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// GetCachedPlan returns the entry for hash and level, or nil.
func (s *SQLiteStore) GetCachedPlan(ctx context.Context, hash string, level models.ExperienceLevel) (*models.CachedPlan, error) {
	var (
		raw     string
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT plan, created_at FROM cached_plans WHERE hash = ? AND experience_level = ?`,
		hash, string(level),
	).Scan(&raw, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cached plan: %w", err)
	}

	cp := &models.CachedPlan{Hash: hash, ExperienceLevel: level, CreatedAt: time.UnixMilli(created).UTC()}
	if err := json.Unmarshal([]byte(raw), &cp.Plan); err != nil {
		return nil, fmt.Errorf("decoding cached plan: %w", err)
	}
	return cp, nil
}

// SaveCachedPlan inserts or replaces an entry.
func (s *SQLiteStore) SaveCachedPlan(ctx context.Context, p models.CachedPlan) error {
	raw, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cached_plans (hash, experience_level, plan, created_at) VALUES (?, ?, ?, ?)`,
		p.Hash, string(p.ExperienceLevel), string(raw), p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving cached plan: %w", err)
	}
	return nil
}

// DeleteCachedPlansBefore removes entries created before cutoff.
func (s *SQLiteStore) DeleteCachedPlansBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cached_plans WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("deleting expired plans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted plans: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
