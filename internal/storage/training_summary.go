package storage

import (
	"context"
	"fmt"
	"time"
)

// GroupVolume is the working volume of one muscle group within a period.
type GroupVolume struct {
	GroupID     int64   `json:"muscle_group_id"`
	Group       string  `json:"muscle_group"`
	WorkingSets int     `json:"working_sets"`
	TotalReps   int     `json:"total_reps"`
	TonnageKg   float64 `json:"tonnage_kg"`
}

// VolumeSummaryPeriod holds completed training volume for one time period.
type VolumeSummaryPeriod struct {
	Period            string        `json:"period"`
	Sessions          int           `json:"sessions"`
	WorkingSets       int           `json:"working_sets"`
	AvgSetsPerSession float64       `json:"avg_sets_per_session"`
	Groups            []GroupVolume `json:"groups"`
}

// GetVolumeSummary returns completed working-set volume per period and
// muscle group for sessions completed in [start, end).
func (db *DB) GetVolumeSummary(ctx context.Context, start, end time.Time, bucket string) ([]VolumeSummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, ws.started_at)::date AS period,
		        mg.id, mg.name,
		        COUNT(*)::int,
		        COALESCE(SUM(s.actual_reps), 0)::int,
		        COALESCE(SUM(s.actual_weight * s.actual_reps), 0)
		 FROM workout_sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 JOIN workout_sessions ws ON ws.id = we.session_id
		 JOIN exercises e ON e.id = we.exercise_id
		 JOIN muscle_groups mg ON mg.id = e.primary_group_id
		 WHERE ws.status = 'COMPLETED'
		   AND s.status = 'COMPLETED' AND s.set_type = 'WORKING'
		   AND ws.started_at >= $2 AND ws.started_at < $3
		 GROUP BY period, mg.id, mg.name
		 ORDER BY period DESC, mg.id`,
		truncInterval(bucket), start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume summary: %w", err)
	}
	defer rows.Close()

	periodMap := make(map[string]*VolumeSummaryPeriod)
	var periodOrder []string

	for rows.Next() {
		var periodTime time.Time
		var gv GroupVolume
		if err := rows.Scan(&periodTime, &gv.GroupID, &gv.Group, &gv.WorkingSets,
			&gv.TotalReps, &gv.TonnageKg); err != nil {
			return nil, fmt.Errorf("scanning volume summary: %w", err)
		}
		key := periodTime.Format("2006-01-02")
		p, ok := periodMap[key]
		if !ok {
			p = &VolumeSummaryPeriod{Period: key}
			periodMap[key] = p
			periodOrder = append(periodOrder, key)
		}
		p.Groups = append(p.Groups, gv)
		p.WorkingSets += gv.WorkingSets
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A session that trained several groups appears in several rows.
	counts, err := db.sessionCounts(ctx, start, end, bucket)
	if err != nil {
		return nil, err
	}

	result := make([]VolumeSummaryPeriod, 0, len(periodOrder))
	for _, key := range periodOrder {
		p := periodMap[key]
		p.Sessions = counts[key]
		if p.Sessions > 0 {
			p.AvgSetsPerSession = float64(p.WorkingSets) / float64(p.Sessions)
		}
		result = append(result, *p)
	}
	return result, nil
}

func (db *DB) sessionCounts(ctx context.Context, start, end time.Time, bucket string) (map[string]int, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, started_at)::date AS period, COUNT(*)::int
		 FROM workout_sessions
		 WHERE status = 'COMPLETED' AND started_at >= $2 AND started_at < $3
		 GROUP BY period`,
		truncInterval(bucket), start, end)
	if err != nil {
		return nil, fmt.Errorf("querying session counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			periodTime time.Time
			n          int
		)
		if err := rows.Scan(&periodTime, &n); err != nil {
			return nil, fmt.Errorf("scanning session counts: %w", err)
		}
		counts[periodTime.Format("2006-01-02")] = n
	}
	return counts, rows.Err()
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week", "week":
		return "week"
	case "1 month", "month":
		return "month"
	default:
		return "week"
	}
}
