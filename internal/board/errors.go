package board

import "errors"

// Errors surfaced by board mutations.
var (
	// ErrLockTimeout is returned when a lane lock could not be acquired
	// within the configured wait. The failure is retryable: the caller
	// should retry the whole mutation.
	ErrLockTimeout = errors.New("timed out waiting for lane lock")

	// ErrInvariantViolation is returned when the dense 1..N position
	// invariant does not hold for a lane at the end of a mutation. It
	// indicates a programming error, not a user-retryable condition;
	// the enclosing transaction must be rolled back.
	ErrInvariantViolation = errors.New("lane position invariant violated")
)
