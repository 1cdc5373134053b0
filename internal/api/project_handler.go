package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/service"
)

// CreateProjectRequest represents the request body for creating a new project
type CreateProjectRequest struct {
	OwnerID string `json:"owner_id" validate:"required,uuid"`
	Name    string `json:"name" validate:"required,min=1"`
}

// ProjectResponse represents the response data for a project
type ProjectResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectHandler handles project-related HTTP requests
type ProjectHandler struct {
	boardService service.BoardService
	validator    *validator.Validate
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(boardService service.BoardService) *ProjectHandler {
	return &ProjectHandler{
		boardService: boardService,
		validator:    validator.New(),
	}
}

// CreateProject handles POST /api/projects requests
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid owner ID")
		return
	}

	project, err := h.boardService.CreateProject(r.Context(), ownerID, req.Name)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, projectToResponse(project))
}

// GetProject handles GET /api/projects/{projectID} requests
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid project ID")
		return
	}

	project, err := h.boardService.GetProject(r.Context(), projectID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, projectToResponse(project))
}

// projectToResponse converts a domain.Project to a ProjectResponse
func projectToResponse(project *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:        project.ID.String(),
		OwnerID:   project.OwnerID.String(),
		Name:      project.Name,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}
