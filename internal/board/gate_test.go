package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/domain"
)

// seedLane fills a lane with n fresh tasks at positions 1..n and
// returns their IDs in position order.
func seedLane(ps *memPositionStore, lane LaneKey, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
		ps.add(lane, ids[i], i+1)
	}
	return ids
}

func TestGateHandleInsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := NewGate(nil)
	lane := testLane(domain.TaskStatusTodo)

	t.Run("append into empty lane", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		taskID := uuid.New()

		pos, err := gate.HandleInsert(ctx, ps, InsertRequest{
			TaskID: taskID,
			Lane:   lane,
			Origin: OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, pos)
		assert.Empty(t, ps.shiftCalls)
		require.Len(t, ps.lockCalls, 1)
		assert.Equal(t, []LaneKey{lane}, ps.lockCalls[0])
	})

	t.Run("insert into middle opens a slot", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, lane, 3)
		taskID := uuid.New()

		pos, err := gate.HandleInsert(ctx, ps, InsertRequest{
			TaskID:    taskID,
			Lane:      lane,
			Requested: intPtr(2),
			Origin:    OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, pos)

		// The caller writes the row; simulate that, then verify.
		ps.add(lane, taskID, pos)
		require.NoError(t, gate.VerifyLanes(ctx, ps, lane))
		assert.Equal(t, []uuid.UUID{ids[0], taskID, ids[1], ids[2]}, ps.order(lane))
	})

	t.Run("compensating origin bypasses engine and store", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		seedLane(ps, lane, 3)

		pos, err := gate.HandleInsert(ctx, ps, InsertRequest{
			TaskID:    uuid.New(),
			Lane:      lane,
			Requested: intPtr(7),
			Origin:    OriginCompensating,
		})

		require.NoError(t, err)
		assert.Equal(t, 7, pos, "requested position is carried verbatim")
		assert.Empty(t, ps.lockCalls, "no lane locks taken")
		assert.Empty(t, ps.shiftCalls, "no shifts issued")
	})

	t.Run("shift failure propagates", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		seedLane(ps, lane, 2)
		shiftErr := errors.New("shift failed")
		ps.failShift = shiftErr

		_, err := gate.HandleInsert(ctx, ps, InsertRequest{
			TaskID:    uuid.New(),
			Lane:      lane,
			Requested: intPtr(1),
			Origin:    OriginUser,
		})

		assert.ErrorIs(t, err, shiftErr)
	})
}

func TestGateHandleMove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := NewGate(nil)
	todo := testLane(domain.TaskStatusTodo)
	inProgress := testLane(domain.TaskStatusInProgress)

	t.Run("same-lane move down", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, todo, 4)

		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:    ids[3],
			OldLane:   todo,
			OldPos:    4,
			NewLane:   todo,
			Requested: intPtr(2),
			Origin:    OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, pos)
		assert.Equal(t, []uuid.UUID{ids[0], ids[3], ids[1], ids[2]}, ps.order(todo))
	})

	t.Run("cross-lane move closes gap and opens slot", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		src := seedLane(ps, todo, 3)
		dst := seedLane(ps, inProgress, 2)

		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:    src[1],
			OldLane:   todo,
			OldPos:    2,
			NewLane:   inProgress,
			Requested: intPtr(1),
			Origin:    OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, pos)
		assert.Equal(t, []uuid.UUID{src[0], src[2]}, ps.order(todo))
		assert.Equal(t, []uuid.UUID{src[1], dst[0], dst[1]}, ps.order(inProgress))
	})

	t.Run("cross-lane append with nil request", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		src := seedLane(ps, todo, 2)
		dst := seedLane(ps, inProgress, 2)

		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:  src[0],
			OldLane: todo,
			OldPos:  1,
			NewLane: inProgress,
			Origin:  OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 3, pos)
		assert.Equal(t, []uuid.UUID{src[1]}, ps.order(todo))
		assert.Equal(t, []uuid.UUID{dst[0], dst[1], src[0]}, ps.order(inProgress))
	})

	t.Run("no-op move issues no writes", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, todo, 3)

		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:    ids[1],
			OldLane:   todo,
			OldPos:    2,
			NewLane:   todo,
			Requested: intPtr(2),
			Origin:    OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 2, pos)
		assert.Empty(t, ps.lockCalls)
		assert.Empty(t, ps.shiftCalls)
		assert.Equal(t, []uuid.UUID{ids[0], ids[1], ids[2]}, ps.order(todo))
	})

	t.Run("same-lane nil request is a no-op", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, todo, 3)

		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:  ids[0],
			OldLane: todo,
			OldPos:  1,
			NewLane: todo,
			Origin:  OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, pos)
		assert.Empty(t, ps.lockCalls)
	})

	t.Run("overshoot from a non-last slot moves to lane end", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, todo, 3)

		// Requesting far past the end from the head must land the task
		// at position 3 and leave the lane dense, never at 4 with a gap.
		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:    ids[0],
			OldLane:   todo,
			OldPos:    1,
			NewLane:   todo,
			Requested: intPtr(50),
			Origin:    OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 3, pos)
		assert.Equal(t, []uuid.UUID{ids[1], ids[2], ids[0]}, ps.order(todo))
	})

	t.Run("clamp lands back on current slot", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, todo, 3)

		// Task already holds the last slot; an overshoot clamps back
		// onto it and nothing moves.
		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:    ids[2],
			OldLane:   todo,
			OldPos:    3,
			NewLane:   todo,
			Requested: intPtr(99),
			Origin:    OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, 3, pos)
		assert.Empty(t, ps.shiftCalls)
		assert.Equal(t, []uuid.UUID{ids[0], ids[1], ids[2]}, ps.order(todo))
	})

	t.Run("locks both lanes in canonical order", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		src := seedLane(ps, todo, 1)
		seedLane(ps, inProgress, 1)

		// in_progress sorts before todo, so the lock call must flip the
		// source/destination order of the request.
		_, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:  src[0],
			OldLane: todo,
			OldPos:  1,
			NewLane: inProgress,
			Origin:  OriginUser,
		})

		require.NoError(t, err)
		require.Len(t, ps.lockCalls, 1)
		assert.Equal(t, []LaneKey{inProgress, todo}, ps.lockCalls[0])
	})

	t.Run("compensating origin writes placement verbatim", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, todo, 2)

		pos, err := gate.HandleMove(ctx, ps, MoveRequest{
			TaskID:    ids[0],
			OldLane:   todo,
			OldPos:    1,
			NewLane:   inProgress,
			Requested: intPtr(5),
			Origin:    OriginCompensating,
		})

		require.NoError(t, err)
		assert.Equal(t, 5, pos)
		assert.Empty(t, ps.lockCalls)
		assert.Empty(t, ps.shiftCalls)

		gotLane, gotPos := ps.position(ids[0])
		assert.Equal(t, inProgress, gotLane)
		assert.Equal(t, 5, gotPos)
	})
}

func TestGateHandleRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := NewGate(nil)
	lane := testLane(domain.TaskStatusDone)

	t.Run("closes the gap", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, lane, 4)

		// The row is deleted before the gate runs.
		ps.remove(ids[1])

		err := gate.HandleRemove(ctx, ps, RemoveRequest{
			TaskID:   ids[1],
			Lane:     lane,
			Position: 2,
			Origin:   OriginUser,
		})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{ids[0], ids[2], ids[3]}, ps.order(lane))
	})

	t.Run("removing the last task leaves an empty lane", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ids := seedLane(ps, lane, 1)
		ps.remove(ids[0])

		err := gate.HandleRemove(ctx, ps, RemoveRequest{
			TaskID:   ids[0],
			Lane:     lane,
			Position: 1,
			Origin:   OriginUser,
		})

		require.NoError(t, err)
		assert.Empty(t, ps.order(lane))
	})

	t.Run("compensating origin is a no-op", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		seedLane(ps, lane, 3)

		err := gate.HandleRemove(ctx, ps, RemoveRequest{
			TaskID:   uuid.New(),
			Lane:     lane,
			Position: 2,
			Origin:   OriginCompensating,
		})

		require.NoError(t, err)
		assert.Empty(t, ps.lockCalls)
		assert.Empty(t, ps.shiftCalls)
	})
}

func TestGateVerifyLanes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := NewGate(nil)
	lane := testLane(domain.TaskStatusBacklog)

	t.Run("dense lane passes", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		seedLane(ps, lane, 5)
		assert.NoError(t, gate.VerifyLanes(ctx, ps, lane))
	})

	t.Run("empty lane passes", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		assert.NoError(t, gate.VerifyLanes(ctx, ps, lane))
	})

	t.Run("gap is an invariant violation", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ps.add(lane, uuid.New(), 1)
		ps.add(lane, uuid.New(), 3)

		err := gate.VerifyLanes(ctx, ps, lane)
		assert.ErrorIs(t, err, ErrInvariantViolation)
	})

	t.Run("zero-based lane is an invariant violation", func(t *testing.T) {
		t.Parallel()

		ps := newMemPositionStore()
		ps.add(lane, uuid.New(), 0)
		ps.add(lane, uuid.New(), 1)

		err := gate.VerifyLanes(ctx, ps, lane)
		assert.ErrorIs(t, err, ErrInvariantViolation)
	})
}

// TestGateMutationSequence drives a realistic series of inserts, moves
// and removals through the gate and checks the lanes stay dense
// throughout.
func TestGateMutationSequence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := NewGate(nil)
	ps := newMemPositionStore()
	todo := testLane(domain.TaskStatusTodo)
	inProgress := testLane(domain.TaskStatusInProgress)

	insert := func(requested *int) uuid.UUID {
		t.Helper()
		id := uuid.New()
		pos, err := gate.HandleInsert(ctx, ps, InsertRequest{
			TaskID: id, Lane: todo, Requested: requested, Origin: OriginUser,
		})
		require.NoError(t, err)
		ps.add(todo, id, pos)
		require.NoError(t, gate.VerifyLanes(ctx, ps, todo))
		return id
	}

	a := insert(nil)        // todo: [a]
	b := insert(nil)        // todo: [a b]
	c := insert(intPtr(1))  // todo: [c a b]
	d := insert(intPtr(2))  // todo: [c d a b]
	_ = insert(intPtr(99))  // todo: [c d a b e]
	assert.Len(t, ps.order(todo), 5)
	assert.Equal(t, c, ps.order(todo)[0])

	// Move d into in_progress.
	_, err := gate.HandleMove(ctx, ps, MoveRequest{
		TaskID: d, OldLane: todo, OldPos: 2, NewLane: inProgress, Origin: OriginUser,
	})
	require.NoError(t, err)

	// Move a to the head of todo.
	_, aPos := ps.position(a)
	_, err = gate.HandleMove(ctx, ps, MoveRequest{
		TaskID: a, OldLane: todo, OldPos: aPos, NewLane: todo,
		Requested: intPtr(1), Origin: OriginUser,
	})
	require.NoError(t, err)

	// Delete b.
	_, bPos := ps.position(b)
	ps.remove(b)
	require.NoError(t, gate.HandleRemove(ctx, ps, RemoveRequest{
		TaskID: b, Lane: todo, Position: bPos, Origin: OriginUser,
	}))

	require.NoError(t, gate.VerifyLanes(ctx, ps, todo, inProgress))
	assert.Len(t, ps.order(todo), 3)
	assert.Equal(t, a, ps.order(todo)[0])
	assert.Equal(t, []uuid.UUID{d}, ps.order(inProgress))
}

// TestGateConcurrentInserts runs appends from many goroutines with the
// lane lock held, the way the service layer does, and checks the lane
// ends dense.
func TestGateConcurrentInserts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := NewGate(nil)
	ps := newMemPositionStore()
	lane := testLane(domain.TaskStatusTodo)
	locker := NewLaneLocker(5 * time.Second)

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			release, err := locker.Lock(ctx, lane)
			if err != nil {
				errCh <- err
				return
			}
			defer release()

			id := uuid.New()
			pos, err := gate.HandleInsert(ctx, ps, InsertRequest{
				TaskID: id, Lane: lane, Origin: OriginUser,
			})
			if err != nil {
				errCh <- err
				return
			}
			ps.add(lane, id, pos)
			errCh <- gate.VerifyLanes(ctx, ps, lane)
		}()
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	positions, err := ps.LanePositions(ctx, lane)
	require.NoError(t, err)
	require.Len(t, positions, workers)
	for i, pos := range positions {
		assert.Equal(t, i+1, pos)
	}
}
