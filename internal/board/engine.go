package board

import "github.com/google/uuid"

// Shift describes one compensating adjustment: every task in Lane whose
// position falls within [From, To] has Delta added to its position,
// except the task identified by ExcludeID (the one being placed, which
// must keep the position the engine chose for it).
//
// A zero To means the range is unbounded above. Implementations of
// PositionStore must apply positive deltas in descending position order
// and negative deltas in ascending order so intermediate states never
// collide on storage layers that enforce uniqueness eagerly.
type Shift struct {
	Lane      LaneKey
	From      int
	To        int
	Delta     int
	ExcludeID uuid.UUID
}

// Bounded reports whether the shift has an upper bound.
func (s Shift) Bounded() bool {
	return s.To != 0
}

// Placement is the engine's decision for one mutation: the position the
// task ends up at and the compensating shifts that must be applied in
// the same transaction to keep every touched lane dense.
type Placement struct {
	Position int
	Shifts   []Shift
}

// PlaceOnInsert computes the placement for a task being created in a
// lane that currently has laneMax tasks. A nil requested position, or
// one past the end of the lane, appends; anything else is clamped to at
// least 1 and opens a slot by shifting the tail of the lane up.
//
// The relative order of tasks below the insertion point is never
// disturbed.
func PlaceOnInsert(taskID uuid.UUID, lane LaneKey, laneMax int, requested *int) Placement {
	if requested == nil || *requested > laneMax+1 {
		return Placement{Position: laneMax + 1}
	}

	pos := *requested
	if pos < 1 {
		pos = 1
	}

	if pos > laneMax {
		// Landing exactly at laneMax+1: nothing to shift.
		return Placement{Position: pos}
	}

	return Placement{
		Position: pos,
		Shifts: []Shift{
			{Lane: lane, From: pos, To: laneMax, Delta: +1, ExcludeID: taskID},
		},
	}
}

// PlaceOnMove computes the placement for a task moving from oldPos in
// oldLane to a requested position in newLane. destMaxExclSelf is the
// highest occupied position in the destination lane not counting the
// moving task itself; zero for an empty destination.
//
// Callers must have already short-circuited the no-op case (same lane,
// requested position equal to the current one or absent); the engine
// assumes the move is real.
func PlaceOnMove(taskID uuid.UUID, oldLane LaneKey, oldPos int, newLane LaneKey, requested *int, destMaxExclSelf int) Placement {
	// The highest reachable position. Cross-lane the task is new to the
	// destination, so it can land one past the current max. Same-lane
	// the task already occupies a slot and the lane end is the lane's
	// size: the current max, or oldPos when the task itself is last.
	laneEnd := destMaxExclSelf + 1
	if oldLane == newLane {
		laneEnd = destMaxExclSelf
		if oldPos > laneEnd {
			laneEnd = oldPos
		}
	}

	newPos := laneEnd
	if requested != nil {
		newPos = clamp(*requested, 1, laneEnd)
	}

	if oldLane == newLane {
		if newPos == oldPos {
			return Placement{Position: oldPos}
		}
		if newPos > oldPos {
			// Moving down: the block between the old and new slots
			// slides up by one.
			return Placement{
				Position: newPos,
				Shifts: []Shift{
					{Lane: oldLane, From: oldPos + 1, To: newPos, Delta: -1, ExcludeID: taskID},
				},
			}
		}
		// Moving up: the displaced block slides down by one.
		return Placement{
			Position: newPos,
			Shifts: []Shift{
				{Lane: oldLane, From: newPos, To: oldPos - 1, Delta: +1, ExcludeID: taskID},
			},
		}
	}

	// Cross-lane: close the gap left behind, then open a slot in the
	// destination.
	return Placement{
		Position: newPos,
		Shifts: []Shift{
			{Lane: oldLane, From: oldPos + 1, Delta: -1, ExcludeID: taskID},
			{Lane: newLane, From: newPos, Delta: +1, ExcludeID: taskID},
		},
	}
}

// PlaceOnRemove computes the compensating shifts for a task leaving a
// lane with nothing moving in: the tasks above the vacated position
// slide down to close the gap. Deletion is the move-out half of a move.
func PlaceOnRemove(taskID uuid.UUID, lane LaneKey, vacatedPos int) Placement {
	return Placement{
		Shifts: []Shift{
			{Lane: lane, From: vacatedPos + 1, Delta: -1, ExcludeID: taskID},
		},
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
