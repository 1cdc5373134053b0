package board

import (
	"context"

	"github.com/google/uuid"
)

// PositionStore is the narrow transactional contract the board applies
// its placement decisions through. Implementations are expected to be
// scoped to the mutation's enclosing transaction; every method's
// effects must commit or roll back together with it.
type PositionStore interface {
	// LockLanes takes storage-level exclusive locks on the given lanes
	// for the remainder of the enclosing transaction. It is called
	// before any lane state is read. Implementations without a native
	// lock (e.g. in-memory fakes already serialized by a LaneLocker)
	// may make this a no-op.
	// Returns ErrLockTimeout (wrapped) if a lock cannot be acquired in time.
	LockLanes(ctx context.Context, lanes ...LaneKey) error

	// MaxPosition returns the highest occupied position in the lane,
	// or zero for an empty lane.
	MaxPosition(ctx context.Context, lane LaneKey) (int, error)

	// MaxPositionExcluding returns the highest occupied position in the
	// lane not counting the given task, or zero if the lane holds no
	// other tasks.
	MaxPositionExcluding(ctx context.Context, lane LaneKey, taskID uuid.UUID) (int, error)

	// ApplyShift adds the shift's delta to every task in its range.
	// Positive deltas are applied in descending position order and
	// negative deltas in ascending order.
	ApplyShift(ctx context.Context, shift Shift) error

	// SetPlacement writes the task's workflow status and position in
	// one step. This is the only code path that persists a placement.
	SetPlacement(ctx context.Context, taskID uuid.UUID, lane LaneKey, position int) error

	// LanePositions returns every occupied position in the lane in
	// ascending order, used to verify the dense invariant.
	LanePositions(ctx context.Context, lane LaneKey) ([]int, error)
}
