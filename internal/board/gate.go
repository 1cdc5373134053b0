package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
)

// Origin distinguishes user-initiated mutations from the compensating
// shift writes the gate issues itself. The distinction is an explicit
// parameter rather than an ambient call-depth count so the recursion
// guard is visible and testable.
type Origin int

const (
	// OriginUser marks a mutation initiated by a caller; it runs the
	// full reorder logic.
	OriginUser Origin = iota

	// OriginCompensating marks a shift write issued by the gate itself.
	// Such writes bypass the reorder engine entirely: re-running it
	// against an already-shifted lane would corrupt the invariant or
	// loop.
	OriginCompensating
)

// InsertRequest describes a pending task creation.
type InsertRequest struct {
	TaskID    uuid.UUID
	Lane      LaneKey
	Requested *int // nil means append
	Origin    Origin
}

// MoveRequest describes a pending position or lane change for an
// existing task.
type MoveRequest struct {
	TaskID    uuid.UUID
	OldLane   LaneKey
	OldPos    int
	NewLane   LaneKey
	Requested *int // nil means append (or stay put, if the lane is unchanged)
	Origin    Origin
}

// RemoveRequest describes a task leaving its lane with nothing moving
// in, i.e. a deletion.
type RemoveRequest struct {
	TaskID   uuid.UUID
	Lane     LaneKey
	Position int
	Origin   Origin
}

// Gate serializes and applies placement decisions. It is the only
// component allowed to invoke the reorder engine against live lane
// state, and every write it issues is tagged as compensating so it can
// never re-enter itself.
//
// The gate assumes the caller holds the lane locks for the mutation
// (see LaneLocker) and runs inside the mutation's transaction: every
// write it issues commits or rolls back with the original mutation.
type Gate struct {
	logger *slog.Logger
}

// NewGate creates a new Gate. If logger is nil, a default logger is used.
func NewGate(log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{
		logger: log.With(slog.String("component", "board_gate")),
	}
}

// HandleInsert resolves the final position for a task being created and
// applies the compensating shifts that open its slot. The caller writes
// the row with the returned position and then calls VerifyLanes; the
// gate cannot check the invariant itself because the row does not exist
// yet.
func (g *Gate) HandleInsert(ctx context.Context, ps PositionStore, req InsertRequest) (int, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if req.Origin == OriginCompensating {
		// Recursion guard: a shift write carries its position verbatim
		// and never re-enters the engine.
		if req.Requested == nil {
			return 0, nil
		}
		return *req.Requested, nil
	}

	if err := ps.LockLanes(ctx, req.Lane); err != nil {
		return 0, fmt.Errorf("failed to lock lane %s: %w", req.Lane, err)
	}

	laneMax, err := ps.MaxPosition(ctx, req.Lane)
	if err != nil {
		return 0, fmt.Errorf("failed to read max position for lane %s: %w", req.Lane, err)
	}

	placement := PlaceOnInsert(req.TaskID, req.Lane, laneMax, req.Requested)

	if err := g.applyShifts(ctx, ps, placement.Shifts); err != nil {
		return 0, err
	}

	log.Debug("placed task on insert",
		slog.String("task_id", req.TaskID.String()),
		slog.String("lane", req.Lane.String()),
		slog.Int("position", placement.Position),
		slog.Int("shifts", len(placement.Shifts)))

	return placement.Position, nil
}

// HandleMove resolves and applies a position or lane change for an
// existing task. It short-circuits no-op moves before the engine is
// consulted, applies the compensating shifts, writes the task's new
// placement, and verifies the dense invariant for every touched lane.
func (g *Gate) HandleMove(ctx context.Context, ps PositionStore, req MoveRequest) (int, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if req.Origin == OriginCompensating {
		if req.Requested == nil {
			return req.OldPos, nil
		}
		if err := ps.SetPlacement(ctx, req.TaskID, req.NewLane, *req.Requested); err != nil {
			return 0, err
		}
		return *req.Requested, nil
	}

	// No-op short-circuit: same lane, and either no position requested
	// or the position the task already holds. No writes are issued.
	if req.OldLane == req.NewLane && (req.Requested == nil || *req.Requested == req.OldPos) {
		log.Debug("move is a no-op",
			slog.String("task_id", req.TaskID.String()),
			slog.String("lane", req.OldLane.String()),
			slog.Int("position", req.OldPos))
		return req.OldPos, nil
	}

	lanes := sortLanes([]LaneKey{req.OldLane, req.NewLane})
	if err := ps.LockLanes(ctx, lanes...); err != nil {
		return 0, fmt.Errorf("failed to lock lanes for move: %w", err)
	}

	destMax, err := ps.MaxPositionExcluding(ctx, req.NewLane, req.TaskID)
	if err != nil {
		return 0, fmt.Errorf("failed to read max position for lane %s: %w", req.NewLane, err)
	}

	placement := PlaceOnMove(req.TaskID, req.OldLane, req.OldPos, req.NewLane, req.Requested, destMax)

	// The clamp can land a same-lane move back on its current slot;
	// nothing to do then.
	if req.OldLane == req.NewLane && placement.Position == req.OldPos {
		return req.OldPos, nil
	}

	if err := g.applyShifts(ctx, ps, placement.Shifts); err != nil {
		return 0, err
	}

	if err := ps.SetPlacement(ctx, req.TaskID, req.NewLane, placement.Position); err != nil {
		return 0, fmt.Errorf("failed to set placement for task %s: %w", req.TaskID, err)
	}

	if err := g.VerifyLanes(ctx, ps, lanes...); err != nil {
		return 0, err
	}

	log.Debug("placed task on move",
		slog.String("task_id", req.TaskID.String()),
		slog.String("from_lane", req.OldLane.String()),
		slog.String("to_lane", req.NewLane.String()),
		slog.Int("from_position", req.OldPos),
		slog.Int("to_position", placement.Position))

	return placement.Position, nil
}

// HandleRemove closes the gap a deleted task leaves behind and verifies
// the lane. The caller must have deleted the row (in the same
// transaction) before calling.
func (g *Gate) HandleRemove(ctx context.Context, ps PositionStore, req RemoveRequest) error {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if req.Origin == OriginCompensating {
		return nil
	}

	if err := ps.LockLanes(ctx, req.Lane); err != nil {
		return fmt.Errorf("failed to lock lane %s: %w", req.Lane, err)
	}

	placement := PlaceOnRemove(req.TaskID, req.Lane, req.Position)
	if err := g.applyShifts(ctx, ps, placement.Shifts); err != nil {
		return err
	}

	if err := g.VerifyLanes(ctx, ps, req.Lane); err != nil {
		return err
	}

	log.Debug("closed gap after removal",
		slog.String("task_id", req.TaskID.String()),
		slog.String("lane", req.Lane.String()),
		slog.Int("vacated_position", req.Position))

	return nil
}

// VerifyLanes checks the dense invariant for each given lane: the
// occupied positions must be exactly 1..N. A violation means a
// programming error somewhere in the mutation path; the caller must
// abort the enclosing transaction.
func (g *Gate) VerifyLanes(ctx context.Context, ps PositionStore, lanes ...LaneKey) error {
	for _, lane := range lanes {
		positions, err := ps.LanePositions(ctx, lane)
		if err != nil {
			return fmt.Errorf("failed to read positions for lane %s: %w", lane, err)
		}
		for i, pos := range positions {
			if pos != i+1 {
				return fmt.Errorf("%w: lane %s positions %v", ErrInvariantViolation, lane, positions)
			}
		}
	}
	return nil
}

// applyShifts applies each compensating shift in order. Shift writes go
// straight to the position store; they never pass back through the
// gate's handlers.
func (g *Gate) applyShifts(ctx context.Context, ps PositionStore, shifts []Shift) error {
	for _, shift := range shifts {
		if err := ps.ApplyShift(ctx, shift); err != nil {
			return fmt.Errorf("failed to apply shift on lane %s: %w", shift.Lane, err)
		}
	}
	return nil
}
