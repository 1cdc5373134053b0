package board

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/taskflow/taskflow-api/internal/domain"
)

func intPtr(v int) *int {
	return &v
}

func testLane(status domain.TaskStatus) LaneKey {
	return LaneKey{
		ProjectID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Status:    status,
	}
}

func TestPlaceOnInsert(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	lane := testLane(domain.TaskStatusTodo)

	tests := []struct {
		name       string
		laneMax    int
		requested  *int
		wantPos    int
		wantShifts []Shift
	}{
		{
			name:      "nil request appends to empty lane",
			laneMax:   0,
			requested: nil,
			wantPos:   1,
		},
		{
			name:      "nil request appends after last task",
			laneMax:   3,
			requested: nil,
			wantPos:   4,
		},
		{
			name:      "request past end appends",
			laneMax:   3,
			requested: intPtr(99),
			wantPos:   4,
		},
		{
			name:      "request exactly one past end appends without shifts",
			laneMax:   3,
			requested: intPtr(4),
			wantPos:   4,
		},
		{
			name:      "request in the middle opens a slot",
			laneMax:   3,
			requested: intPtr(2),
			wantPos:   2,
			wantShifts: []Shift{
				{Lane: lane, From: 2, To: 3, Delta: +1, ExcludeID: taskID},
			},
		},
		{
			name:      "request at the head shifts the whole lane",
			laneMax:   3,
			requested: intPtr(1),
			wantPos:   1,
			wantShifts: []Shift{
				{Lane: lane, From: 1, To: 3, Delta: +1, ExcludeID: taskID},
			},
		},
		{
			name:      "zero request clamps to one",
			laneMax:   3,
			requested: intPtr(0),
			wantPos:   1,
			wantShifts: []Shift{
				{Lane: lane, From: 1, To: 3, Delta: +1, ExcludeID: taskID},
			},
		},
		{
			name:      "negative request clamps to one",
			laneMax:   2,
			requested: intPtr(-7),
			wantPos:   1,
			wantShifts: []Shift{
				{Lane: lane, From: 1, To: 2, Delta: +1, ExcludeID: taskID},
			},
		},
		{
			name:      "request far past empty lane lands at one",
			laneMax:   0,
			requested: intPtr(5),
			wantPos:   1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := PlaceOnInsert(taskID, lane, tc.laneMax, tc.requested)
			assert.Equal(t, tc.wantPos, got.Position)
			assert.Equal(t, tc.wantShifts, got.Shifts)
		})
	}
}

func TestPlaceOnMoveSameLane(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	lane := testLane(domain.TaskStatusTodo)

	tests := []struct {
		name            string
		oldPos          int
		requested       *int
		destMaxExclSelf int
		wantPos         int
		wantShifts      []Shift
	}{
		{
			// Scenario from the board rules: A(1),B(2),C(3),D(4); D to
			// position 2 yields A(1),D(2),B(3),C(4).
			name:            "moving up shifts the displaced block down",
			oldPos:          4,
			requested:       intPtr(2),
			destMaxExclSelf: 3,
			wantPos:         2,
			wantShifts: []Shift{
				{Lane: lane, From: 2, To: 3, Delta: +1, ExcludeID: taskID},
			},
		},
		{
			name:            "moving down slides the block up",
			oldPos:          1,
			requested:       intPtr(3),
			destMaxExclSelf: 3,
			wantPos:         3,
			wantShifts: []Shift{
				{Lane: lane, From: 2, To: 3, Delta: -1, ExcludeID: taskID},
			},
		},
		{
			// The lane holds three tasks; the mover already occupies one
			// of the slots, so "end" is 3, not 4.
			name:            "nil request appends to lane end",
			oldPos:          1,
			requested:       nil,
			destMaxExclSelf: 3,
			wantPos:         3,
			wantShifts: []Shift{
				{Lane: lane, From: 2, To: 3, Delta: -1, ExcludeID: taskID},
			},
		},
		{
			name:            "request past end clamps to lane end",
			oldPos:          2,
			requested:       intPtr(50),
			destMaxExclSelf: 3,
			wantPos:         3,
			wantShifts: []Shift{
				{Lane: lane, From: 3, To: 3, Delta: -1, ExcludeID: taskID},
			},
		},
		{
			// Overshooting from the head must behave exactly like
			// requesting the end; the rest of the lane compacts into
			// 1..N-1 with no gap left at N.
			name:            "head task overshooting lands at lane end",
			oldPos:          1,
			requested:       intPtr(99),
			destMaxExclSelf: 3,
			wantPos:         3,
			wantShifts: []Shift{
				{Lane: lane, From: 2, To: 3, Delta: -1, ExcludeID: taskID},
			},
		},
		{
			name:            "request clamping back onto the current slot changes nothing",
			oldPos:          4,
			requested:       intPtr(9),
			destMaxExclSelf: 3,
			wantPos:         4,
		},
		{
			name:            "zero request clamps to head",
			oldPos:          3,
			requested:       intPtr(0),
			destMaxExclSelf: 3,
			wantPos:         1,
			wantShifts: []Shift{
				{Lane: lane, From: 1, To: 2, Delta: +1, ExcludeID: taskID},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := PlaceOnMove(taskID, lane, tc.oldPos, lane, tc.requested, tc.destMaxExclSelf)
			assert.Equal(t, tc.wantPos, got.Position)
			assert.Equal(t, tc.wantShifts, got.Shifts)
		})
	}
}

func TestPlaceOnMoveCrossLane(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	src := testLane(domain.TaskStatusTodo)
	dst := testLane(domain.TaskStatusInProgress)

	t.Run("move into occupied lane opens slot and closes gap", func(t *testing.T) {
		t.Parallel()
		// Source A(1),B(2),C(3), moving B; destination X(1),Y(2), target
		// position 1.
		got := PlaceOnMove(taskID, src, 2, dst, intPtr(1), 2)

		assert.Equal(t, 1, got.Position)
		assert.Equal(t, []Shift{
			{Lane: src, From: 3, Delta: -1, ExcludeID: taskID},
			{Lane: dst, From: 1, Delta: +1, ExcludeID: taskID},
		}, got.Shifts)
	})

	t.Run("empty destination clamps any request to one", func(t *testing.T) {
		t.Parallel()
		got := PlaceOnMove(taskID, src, 1, dst, intPtr(5), 0)

		assert.Equal(t, 1, got.Position)
		assert.Equal(t, []Shift{
			{Lane: src, From: 2, Delta: -1, ExcludeID: taskID},
			{Lane: dst, From: 1, Delta: +1, ExcludeID: taskID},
		}, got.Shifts)
	})

	t.Run("nil request appends to destination", func(t *testing.T) {
		t.Parallel()
		got := PlaceOnMove(taskID, src, 2, dst, nil, 4)

		assert.Equal(t, 5, got.Position)
		assert.Equal(t, []Shift{
			{Lane: src, From: 3, Delta: -1, ExcludeID: taskID},
			{Lane: dst, From: 5, Delta: +1, ExcludeID: taskID},
		}, got.Shifts)
	})

	t.Run("source shift is unbounded above", func(t *testing.T) {
		t.Parallel()
		got := PlaceOnMove(taskID, src, 2, dst, intPtr(1), 0)
		assert.False(t, got.Shifts[0].Bounded())
		assert.False(t, got.Shifts[1].Bounded())
	})
}

func TestPlaceOnRemove(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	lane := testLane(domain.TaskStatusDone)

	got := PlaceOnRemove(taskID, lane, 2)

	assert.Zero(t, got.Position)
	assert.Equal(t, []Shift{
		{Lane: lane, From: 3, Delta: -1, ExcludeID: taskID},
	}, got.Shifts)
}
