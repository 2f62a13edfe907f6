package ordering

import (
	"testing"

	"github.com/meltforce/freecoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(exercises []models.Exercise) []int64 {
	out := make([]int64, len(exercises))
	for i, e := range exercises {
		out[i] = e.ID
	}
	return out
}

// TestOrderCompoundBeforeIsolation verifies a compound is scheduled before an
// isolation regardless of input order.
func TestOrderCompoundBeforeIsolation(t *testing.T) {
	in := []models.Exercise{
		{ID: 1, MovementType: models.MovementIsolation, OrderPriority: 50, PrimaryGroupID: models.MuscleGroupArms},
		{ID: 2, MovementType: models.MovementCompound, OrderPriority: 10, PrimaryGroupID: models.MuscleGroupChest},
	}
	assert.Equal(t, []int64{2, 1}, ids(Order(in)))
}

// TestOrderCoreLast verifies core exercises sort after every non-core
// exercise, even a compound core movement against a late isolation.
func TestOrderCoreLast(t *testing.T) {
	in := []models.Exercise{
		{ID: 1, MovementType: models.MovementCompound, OrderPriority: 1, PrimaryGroupID: models.CoreMuscleGroupID},
		{ID: 2, MovementType: models.MovementIsolation, OrderPriority: 99, PrimaryGroupID: models.MuscleGroupArms},
		{ID: 3, MovementType: models.MovementCompound, OrderPriority: 20, PrimaryGroupID: models.MuscleGroupLegs},
	}
	assert.Equal(t, []int64{3, 2, 1}, ids(Order(in)))
}

// TestOrderDifficultyTiebreak verifies that with equal priority the harder
// movement comes first, and equal keys keep input order.
func TestOrderDifficultyTiebreak(t *testing.T) {
	in := []models.Exercise{
		{ID: 1, MovementType: models.MovementCompound, OrderPriority: 10, Difficulty: models.DifficultyBeginner},
		{ID: 2, MovementType: models.MovementCompound, OrderPriority: 10, Difficulty: models.DifficultyAdvanced},
		{ID: 3, MovementType: models.MovementCompound, OrderPriority: 10, Difficulty: models.DifficultyIntermediate},
		{ID: 4, MovementType: models.MovementCompound, OrderPriority: 10, Difficulty: models.DifficultyIntermediate},
	}
	assert.Equal(t, []int64{2, 3, 4, 1}, ids(Order(in)))
}

// TestOrderCoreSorting verifies core exercises sort compound-first, then by
// difficulty rank.
func TestOrderCoreSorting(t *testing.T) {
	in := []models.Exercise{
		{ID: 1, MovementType: models.MovementIsolation, Difficulty: models.DifficultyAdvanced, PrimaryGroupID: models.CoreMuscleGroupID},
		{ID: 2, MovementType: models.MovementCompound, Difficulty: models.DifficultyBeginner, PrimaryGroupID: models.CoreMuscleGroupID},
		{ID: 3, MovementType: models.MovementCompound, Difficulty: models.DifficultyAdvanced, PrimaryGroupID: models.CoreMuscleGroupID},
	}
	assert.Equal(t, []int64{3, 2, 1}, ids(Order(in)))
}

// TestOrderDoesNotMutateInput verifies Order returns a new slice.
func TestOrderDoesNotMutateInput(t *testing.T) {
	in := []models.Exercise{
		{ID: 1, MovementType: models.MovementIsolation},
		{ID: 2, MovementType: models.MovementCompound},
	}
	_ = Order(in)
	assert.Equal(t, []int64{1, 2}, ids(in))
}

// TestOrderPlan verifies plan exercises follow catalog ordering and unknown
// entries are kept at the end.
func TestOrderPlan(t *testing.T) {
	catalog := []models.Exercise{
		{ID: 1, MovementType: models.MovementIsolation, OrderPriority: 50},
		{ID: 2, MovementType: models.MovementCompound, OrderPriority: 10},
	}
	plan := models.GeneratedPlan{Exercises: []models.ExercisePlan{
		{ExerciseID: 99}, {ExerciseID: 1}, {ExerciseID: 2},
	}}
	got := OrderPlan(plan, catalog)
	require.Len(t, got.Exercises, 3)
	assert.Equal(t, int64(2), got.Exercises[0].ExerciseID)
	assert.Equal(t, int64(1), got.Exercises[1].ExerciseID)
	assert.Equal(t, int64(99), got.Exercises[2].ExerciseID)
}
