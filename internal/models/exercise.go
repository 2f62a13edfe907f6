package models

// ExperienceLevel is the user's training experience.
type ExperienceLevel string

const (
	LevelBeginner     ExperienceLevel = "beginner"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelAdvanced     ExperienceLevel = "advanced"
)

// ParseExperienceLevel maps a string to a known level.
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	switch ExperienceLevel(s) {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return ExperienceLevel(s), true
	}
	return "", false
}

// Rank orders levels beginner(1) < intermediate(2) < advanced(3).
// Unknown levels rank as intermediate.
func (l ExperienceLevel) Rank() int {
	switch l {
	case LevelBeginner:
		return 1
	case LevelAdvanced:
		return 3
	default:
		return 2
	}
}

// OrDefault returns l, or intermediate when l is empty or unknown.
func (l ExperienceLevel) OrDefault() ExperienceLevel {
	if _, ok := ParseExperienceLevel(string(l)); ok {
		return l
	}
	return LevelIntermediate
}

// MovementType distinguishes multi-joint from single-joint movements.
type MovementType string

const (
	MovementCompound  MovementType = "compound"
	MovementIsolation MovementType = "isolation"
)

// Difficulty is the catalog difficulty of an exercise.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Rank orders harder movements first: advanced(1) < intermediate(2) < beginner(3).
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyAdvanced:
		return 1
	case DifficultyIntermediate:
		return 2
	default:
		return 3
	}
}

// Equipment values used by the catalog.
const (
	EquipmentBarbell    = "barbell"
	EquipmentDumbbell   = "dumbbell"
	EquipmentTrapBar    = "trap_bar"
	EquipmentEZBar      = "ez_bar"
	EquipmentMachine    = "machine"
	EquipmentCable      = "cable"
	EquipmentKettlebell = "kettlebell"
	EquipmentBodyweight = "bodyweight"
)

// Muscle group ids. CoreMuscleGroupID is the fixed group that the ordering,
// rest and safety rules treat specially.
const (
	MuscleGroupChest     int64 = 1
	MuscleGroupBack      int64 = 2
	MuscleGroupLegs      int64 = 3
	MuscleGroupShoulders int64 = 4
	MuscleGroupArms      int64 = 5
	CoreMuscleGroupID    int64 = 6
)

// Exercise is a read-only catalog entry.
type Exercise struct {
	ID             int64           `json:"id"`
	StableID       string          `json:"stable_id"`
	Name           string          `json:"name"`
	Equipment      string          `json:"equipment"`
	MovementType   MovementType    `json:"movement_type"`
	Difficulty     Difficulty      `json:"difficulty"`
	PrimaryGroupID int64           `json:"primary_group_id"`
	OrderPriority  int             `json:"order_priority"`
	MinLevel       ExperienceLevel `json:"min_level"`
}

// IsCore reports whether the exercise trains the core group.
func (e Exercise) IsCore() bool {
	return e.PrimaryGroupID == CoreMuscleGroupID
}

// IsCompound reports whether the exercise is a compound movement.
func (e Exercise) IsCompound() bool {
	return e.MovementType == MovementCompound
}
