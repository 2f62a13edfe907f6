package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/freecoach/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(number int, status models.SetStatus) models.WorkoutSet {
	return models.WorkoutSet{ID: uuid.New(), SetNumber: number, Type: models.SetWorking, Status: status}
}

// TestProjectCurrentSet marks the first planned set in display order.
func TestProjectCurrentSet(t *testing.T) {
	second := ExerciseView{
		Exercise: models.WorkoutExercise{ID: uuid.New(), OrderIndex: 1},
		Sets:     []models.WorkoutSet{set(2, models.SetPlanned), set(1, models.SetPlanned)},
	}
	first := ExerciseView{
		Exercise: models.WorkoutExercise{ID: uuid.New(), OrderIndex: 0},
		Sets:     []models.WorkoutSet{set(1, models.SetCompleted), set(2, models.SetSkipped), set(3, models.SetPlanned)},
	}
	in := []ExerciseView{second, first}

	out := ProjectCurrentSet(in)
	require.Len(t, out, 2)
	assert.Equal(t, first.Exercise.ID, out[0].Exercise.ID)
	assert.Equal(t, models.SetInProgress, out[0].Sets[2].Status)
	assert.Equal(t, models.SetPlanned, out[1].Sets[0].Status)
	assert.Equal(t, 1, out[1].Sets[0].SetNumber)

	// input untouched
	assert.Equal(t, models.SetPlanned, first.Sets[2].Status)
	assert.Equal(t, 2, second.Sets[0].SetNumber)

	cur, ok := CurrentSet(in)
	require.True(t, ok)
	assert.Equal(t, first.Sets[2].ID, cur.ID)
}

// TestProjectCurrentSetAllDone has no current set once nothing is planned.
func TestProjectCurrentSetAllDone(t *testing.T) {
	views := []ExerciseView{{Sets: []models.WorkoutSet{set(1, models.SetCompleted), set(2, models.SetSkipped)}}}
	_, ok := CurrentSet(views)
	assert.False(t, ok)
}
