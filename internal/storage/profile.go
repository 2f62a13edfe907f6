package storage

import (
	"context"
	"fmt"

	"github.com/meltforce/freecoach/internal/models"
)

// GetProfile returns the singleton user profile, or nil before onboarding.
func (db *DB) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	err := db.Pool.QueryRow(ctx, `
		SELECT experience_level, preferred_unit, age, body_weight_kg, height_cm,
		       gender, global_rest_seconds
		FROM user_profile WHERE id = 1
	`).Scan(&p.ExperienceLevel, &p.PreferredUnit, &p.Age, &p.BodyWeightKg,
		&p.HeightCm, &p.Gender, &p.GlobalRestSeconds)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &p, nil
}

// SaveProfile creates or replaces the singleton user profile.
func (db *DB) SaveProfile(ctx context.Context, p models.UserProfile) error {
	unit := p.PreferredUnit
	if unit == "" {
		unit = models.UnitKg
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO user_profile (id, experience_level, preferred_unit, age, body_weight_kg,
		                          height_cm, gender, global_rest_seconds, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			experience_level = EXCLUDED.experience_level,
			preferred_unit = EXCLUDED.preferred_unit,
			age = EXCLUDED.age,
			body_weight_kg = EXCLUDED.body_weight_kg,
			height_cm = EXCLUDED.height_cm,
			gender = EXCLUDED.gender,
			global_rest_seconds = EXCLUDED.global_rest_seconds,
			updated_at = NOW()
	`, string(p.ExperienceLevel), string(unit), p.Age, p.BodyWeightKg, p.HeightCm,
		p.Gender, p.GlobalRestSeconds)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
