package board

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/domain"
)

// LaneKey identifies one lane: the tasks of a single project sharing a
// single workflow status.
type LaneKey struct {
	ProjectID uuid.UUID
	Status    domain.TaskStatus
}

// String returns a stable textual form of the lane key, used for
// logging and for hashing into lock keys.
func (k LaneKey) String() string {
	return fmt.Sprintf("%s/%s", k.ProjectID, k.Status)
}

// Less reports whether k orders before other under the canonical lane
// ordering. Lock acquisition always follows this ordering so that two
// cross-lane moves touching the same pair of lanes in opposite
// directions cannot deadlock.
func (k LaneKey) Less(other LaneKey) bool {
	if k.ProjectID != other.ProjectID {
		return k.ProjectID.String() < other.ProjectID.String()
	}
	return k.Status < other.Status
}

// sortLanes returns the given lanes in canonical order with duplicates
// removed.
func sortLanes(lanes []LaneKey) []LaneKey {
	sorted := make([]LaneKey, 0, len(lanes))
	for _, lane := range lanes {
		dup := false
		for _, seen := range sorted {
			if seen == lane {
				dup = true
				break
			}
		}
		if !dup {
			sorted = append(sorted, lane)
		}
	}
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Less(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}
