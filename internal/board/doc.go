// Package board maintains the ordered positions of tasks on a project
// board. A lane is the set of one project's tasks sharing one workflow
// status; within a lane, positions are unique and dense, covering
// exactly 1..N for N tasks.
//
// The package is layered:
//
//   - The reorder engine (PlaceOnInsert, PlaceOnMove, PlaceOnRemove) is
//     pure: given the current lane state and a requested placement it
//     computes the final position and the compensating shifts, with no
//     I/O.
//   - PositionStore is the narrow transactional contract the engine's
//     decisions are applied through.
//   - Gate wraps engine invocations with the recursion guard and
//     applies placements atomically inside the caller's transaction.
//   - LaneLocker serializes concurrent mutations per lane key.
//
// No code outside this package may write a task's position or lane key
// directly.
package board
