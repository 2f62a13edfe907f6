package models

// Severity of a safety violation.
type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityHigh    Severity = "HIGH"
)

// ViolationType identifies the rule a violation came from.
type ViolationType string

const (
	ViolationWeightJump        ViolationType = "WEIGHT_JUMP"
	ViolationSessionVolume     ViolationType = "SESSION_VOLUME"
	ViolationExerciseCount     ViolationType = "EXERCISE_COUNT"
	ViolationExerciseVolume    ViolationType = "EXERCISE_VOLUME"
	ViolationMuscleGroupVolume ViolationType = "MUSCLE_GROUP_VOLUME"
	ViolationMuscleGroupMRV    ViolationType = "MUSCLE_GROUP_MRV"
	ViolationAgeIntensity      ViolationType = "AGE_INTENSITY"
	ViolationDifficulty        ViolationType = "DIFFICULTY_GATE"
	ViolationRestDuration      ViolationType = "REST_DURATION"
)

// SafetyViolation is advisory output of the safety validator.
type SafetyViolation struct {
	Type       ViolationType `json:"type"`
	ExerciseID *int64        `json:"exercise_id,omitempty"`
	Message    string        `json:"message"`
	Severity   Severity      `json:"severity"`
}
