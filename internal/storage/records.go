package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meltforce/freecoach/internal/models"
)

// GetBestRecord returns the newest record of a type for an exercise, or nil.
// Records are append-only and only written when they beat the previous
// best, so the newest row is the best.
func (db *DB) GetBestRecord(ctx context.Context, exerciseID int64, recordType models.RecordType) (*models.PersonalRecord, error) {
	var r models.PersonalRecord
	err := db.Pool.QueryRow(ctx, `
		SELECT id, exercise_id, record_type, weight_value, reps, achieved_at, source_session_id
		FROM personal_records
		WHERE exercise_id = $1 AND record_type = $2
		ORDER BY achieved_at DESC, id DESC
		LIMIT 1
	`, exerciseID, string(recordType)).Scan(&r.ID, &r.ExerciseID, &r.RecordType,
		&r.WeightValue, &r.Reps, &r.AchievedAt, &r.SourceSessionID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying best record: %w", err)
	}
	return &r, nil
}

// InsertRecords batch-inserts personal records in a single statement.
func (db *DB) InsertRecords(ctx context.Context, records []models.PersonalRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO personal_records (exercise_id, record_type, weight_value, reps, achieved_at, source_session_id) VALUES `
	args := make([]any, 0, len(records)*6)
	valueStrings := make([]string, 0, len(records))

	for i, r := range records {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.ExerciseID, string(r.RecordType), r.WeightValue, r.Reps,
			r.AchievedAt, r.SourceSessionID)
	}

	query += strings.Join(valueStrings, ",")

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting personal records: %w", err)
	}
	return nil
}
