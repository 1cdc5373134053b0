package board

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memPositionStore is an in-memory PositionStore used by gate and
// concurrency tests. It records lock and shift calls so tests can
// assert on the gate's behavior, not just its end state.
type memPositionStore struct {
	mu    sync.Mutex
	lanes map[LaneKey]map[uuid.UUID]int

	lockCalls  [][]LaneKey
	shiftCalls []Shift

	failShift    error
	failSetPlace error
}

func newMemPositionStore() *memPositionStore {
	return &memPositionStore{
		lanes: make(map[LaneKey]map[uuid.UUID]int),
	}
}

func (m *memPositionStore) add(lane LaneKey, taskID uuid.UUID, pos int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lanes[lane] == nil {
		m.lanes[lane] = make(map[uuid.UUID]int)
	}
	m.lanes[lane][taskID] = pos
}

func (m *memPositionStore) remove(taskID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tasks := range m.lanes {
		delete(tasks, taskID)
	}
}

// order returns the lane's task IDs in position order.
func (m *memPositionStore) order(lane LaneKey) []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	type entry struct {
		id  uuid.UUID
		pos int
	}
	entries := make([]entry, 0, len(m.lanes[lane]))
	for id, pos := range m.lanes[lane] {
		entries = append(entries, entry{id, pos})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

func (m *memPositionStore) position(taskID uuid.UUID) (LaneKey, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for lane, tasks := range m.lanes {
		if pos, ok := tasks[taskID]; ok {
			return lane, pos
		}
	}
	return LaneKey{}, 0
}

func (m *memPositionStore) LockLanes(_ context.Context, lanes ...LaneKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockCalls = append(m.lockCalls, lanes)
	return nil
}

func (m *memPositionStore) MaxPosition(_ context.Context, lane LaneKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, pos := range m.lanes[lane] {
		if pos > max {
			max = pos
		}
	}
	return max, nil
}

func (m *memPositionStore) MaxPositionExcluding(_ context.Context, lane LaneKey, taskID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for id, pos := range m.lanes[lane] {
		if id != taskID && pos > max {
			max = pos
		}
	}
	return max, nil
}

func (m *memPositionStore) ApplyShift(_ context.Context, shift Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shiftCalls = append(m.shiftCalls, shift)
	if m.failShift != nil {
		return m.failShift
	}

	for id, pos := range m.lanes[shift.Lane] {
		if id == shift.ExcludeID {
			continue
		}
		if pos < shift.From {
			continue
		}
		if shift.Bounded() && pos > shift.To {
			continue
		}
		m.lanes[shift.Lane][id] = pos + shift.Delta
	}
	return nil
}

func (m *memPositionStore) SetPlacement(_ context.Context, taskID uuid.UUID, lane LaneKey, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSetPlace != nil {
		return m.failSetPlace
	}

	for _, tasks := range m.lanes {
		delete(tasks, taskID)
	}
	if m.lanes[lane] == nil {
		m.lanes[lane] = make(map[uuid.UUID]int)
	}
	m.lanes[lane][taskID] = position
	return nil
}

func (m *memPositionStore) LanePositions(_ context.Context, lane LaneKey) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	positions := make([]int, 0, len(m.lanes[lane]))
	for _, pos := range m.lanes[lane] {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions, nil
}
