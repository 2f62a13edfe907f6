package models

// WeightUnit is the user's preferred display unit. Weights are stored in kg.
type WeightUnit string

const (
	UnitKg WeightUnit = "kg"
	UnitLb WeightUnit = "lb"
)

// UserProfile is the singleton profile created at onboarding.
type UserProfile struct {
	ExperienceLevel   ExperienceLevel `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
	PreferredUnit     WeightUnit      `json:"preferred_unit" validate:"omitempty,oneof=kg lb"`
	Age               *int            `json:"age,omitempty" validate:"omitempty,min=10,max=110"`
	BodyWeightKg      *float64        `json:"body_weight_kg,omitempty" validate:"omitempty,gt=0"`
	HeightCm          *float64        `json:"height_cm,omitempty" validate:"omitempty,gt=0"`
	Gender            string          `json:"gender,omitempty"`
	GlobalRestSeconds *int            `json:"global_rest_seconds,omitempty" validate:"omitempty,min=0,max=900"`
}

// Level returns the profile's level, defaulting to intermediate for a nil
// profile or an unset level.
func (p *UserProfile) Level() ExperienceLevel {
	if p == nil {
		return LevelIntermediate
	}
	return p.ExperienceLevel.OrDefault()
}
