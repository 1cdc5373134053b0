package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Project
var (
	ErrProjectIDEmpty      = errors.New("project ID cannot be empty")
	ErrProjectOwnerIDEmpty = errors.New("project owner ID cannot be empty")
	ErrProjectNameEmpty    = errors.New("project name cannot be empty")
)

// Project is the parent entity every task belongs to. A project's board
// is the set of its tasks grouped into lanes by workflow status.
type Project struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProject creates a new Project with the given owner ID and name.
// It generates a new UUID for the project ID and sets the
// creation/update timestamps.
// Returns an error if validation fails.
func NewProject(ownerID uuid.UUID, name string) (*Project, error) {
	project := &Project{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := project.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

// Validate checks if the Project has valid data.
// Returns an error if any field fails validation.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrProjectIDEmpty
	}

	if p.OwnerID == uuid.Nil {
		return ErrProjectOwnerIDEmpty
	}

	if p.Name == "" {
		return ErrProjectNameEmpty
	}

	return nil
}
