package board

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LaneLocker serializes mutations per lane key. A mutation acquires the
// lock(s) for every lane it touches before reading lane state and holds
// them until its transaction has committed or rolled back; two
// concurrent mutations on the same lane can therefore never interleave
// their read-modify-write of positions.
//
// For a multi-lane acquisition the lanes are taken in canonical order
// (LaneKey.Less), so two cross-lane moves touching the same pair of
// lanes in opposite directions cannot deadlock.
type LaneLocker struct {
	timeout time.Duration

	mu    sync.Mutex
	lanes map[LaneKey]*laneSem
}

// laneSem is a single-slot semaphore with a reference count so unused
// lane entries can be dropped from the map.
type laneSem struct {
	ch   chan struct{}
	refs int
}

// NewLaneLocker creates a LaneLocker whose acquisitions give up after
// the given timeout with ErrLockTimeout.
func NewLaneLocker(timeout time.Duration) *LaneLocker {
	return &LaneLocker{
		timeout: timeout,
		lanes:   make(map[LaneKey]*laneSem),
	}
}

// Lock acquires exclusive locks on the given lanes. On success it
// returns a release function the caller must invoke exactly once, after
// the enclosing transaction has completed.
//
// Returns ErrLockTimeout (wrapped) if the locks cannot all be acquired
// within the locker's timeout, or the context's error if it is
// cancelled first. Either way no locks remain held.
func (l *LaneLocker) Lock(ctx context.Context, lanes ...LaneKey) (func(), error) {
	sorted := sortLanes(lanes)

	// The timeout budget covers the whole acquisition, not each lane.
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	acquired := make([]*laneSem, 0, len(sorted))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			<-acquired[i].ch
		}
		l.mu.Lock()
		for _, lane := range sorted[:len(acquired)] {
			l.unref(lane)
		}
		l.mu.Unlock()
	}

	for _, lane := range sorted {
		sem := l.ref(lane)

		select {
		case sem.ch <- struct{}{}:
			acquired = append(acquired, sem)
		case <-timer.C:
			l.mu.Lock()
			l.unref(lane)
			l.mu.Unlock()
			release()
			return nil, fmt.Errorf("%w: lane %s", ErrLockTimeout, lane)
		case <-ctx.Done():
			l.mu.Lock()
			l.unref(lane)
			l.mu.Unlock()
			release()
			return nil, fmt.Errorf("lane lock wait cancelled for %s: %w", lane, ctx.Err())
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

// ref returns the semaphore for the lane, creating it if needed, and
// bumps its reference count.
func (l *LaneLocker) ref(lane LaneKey) *laneSem {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.lanes[lane]
	if !ok {
		sem = &laneSem{ch: make(chan struct{}, 1)}
		l.lanes[lane] = sem
	}
	sem.refs++
	return sem
}

// unref drops one reference to the lane's semaphore and removes the map
// entry when nobody is using it. Callers must hold l.mu.
func (l *LaneLocker) unref(lane LaneKey) {
	sem, ok := l.lanes[lane]
	if !ok {
		return
	}
	sem.refs--
	if sem.refs <= 0 {
		delete(l.lanes, lane)
	}
}
