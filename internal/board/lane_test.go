package board

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/taskflow/taskflow-api/internal/domain"
)

func TestLaneKeyString(t *testing.T) {
	t.Parallel()

	lane := LaneKey{
		ProjectID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Status:    domain.TaskStatusTodo,
	}
	assert.Equal(t, "11111111-1111-1111-1111-111111111111/todo", lane.String())
}

func TestSortLanes(t *testing.T) {
	t.Parallel()

	projA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	projB := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	aTodo := LaneKey{ProjectID: projA, Status: domain.TaskStatusTodo}
	aInProgress := LaneKey{ProjectID: projA, Status: domain.TaskStatusInProgress}
	bBacklog := LaneKey{ProjectID: projB, Status: domain.TaskStatusBacklog}

	t.Run("orders by project then status", func(t *testing.T) {
		t.Parallel()

		got := sortLanes([]LaneKey{bBacklog, aTodo, aInProgress})
		assert.Equal(t, []LaneKey{aInProgress, aTodo, bBacklog}, got)
	})

	t.Run("ordering is direction independent", func(t *testing.T) {
		t.Parallel()

		forward := sortLanes([]LaneKey{aTodo, bBacklog})
		backward := sortLanes([]LaneKey{bBacklog, aTodo})
		assert.Equal(t, forward, backward)
	})

	t.Run("deduplicates", func(t *testing.T) {
		t.Parallel()

		got := sortLanes([]LaneKey{aTodo, aTodo, aTodo})
		assert.Equal(t, []LaneKey{aTodo}, got)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, sortLanes(nil))
	})
}
