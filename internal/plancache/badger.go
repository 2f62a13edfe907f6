package plancache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/meltforce/freecoach/internal/models"
)

const keyPrefix = "plan/"

// BadgerStore keeps cached plans in Badger. Entries carry a native TTL, so
// expired plans disappear even if no sweep runs.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens a Badger cache in dir. An empty dir opens an in-memory
// store. A zero ttl stores entries without expiry.
func OpenBadger(dir string, ttl time.Duration, log *slog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger plan cache: %w", err)
	}
	if log != nil {
		log.Debug("badger plan cache opened", "dir", dir, "in_memory", dir == "")
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func key(hash string, level models.ExperienceLevel) []byte {
	return []byte(keyPrefix + string(level) + "/" + hash)
}

// GetCachedPlan returns the entry for hash and level, or nil.
func (s *BadgerStore) GetCachedPlan(_ context.Context, hash string, level models.ExperienceLevel) (*models.CachedPlan, error) {
	var cp *models.CachedPlan
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(hash, level))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cp = &models.CachedPlan{}
			return json.Unmarshal(val, cp)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading cached plan: %w", err)
	}
	return cp, nil
}

// SaveCachedPlan writes an entry with the store's TTL.
func (s *BadgerStore) SaveCachedPlan(_ context.Context, p models.CachedPlan) error {
	val, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding cached plan: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(p.Hash, p.ExperienceLevel), val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("saving cached plan: %w", err)
	}
	return nil
}

// DeleteCachedPlansBefore removes entries created before cutoff.
func (s *BadgerStore) DeleteCachedPlansBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var expired [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var cp models.CachedPlan
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &cp) }); err != nil {
				return err
			}
			if cp.CreatedAt.Before(cutoff) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning cached plans: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range expired {
		if err := wb.Delete(k); err != nil {
			return 0, fmt.Errorf("deleting cached plan: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flushing deletes: %w", err)
	}
	return int64(len(expired)), nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
