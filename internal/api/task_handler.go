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

// CreateTaskRequest represents the request body for creating a new task
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"required,oneof=backlog todo in_progress done"`
	ParentID    *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	Position    *int    `json:"position,omitempty"`
}

// MoveTaskRequest represents the request body for moving a task
type MoveTaskRequest struct {
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=backlog todo in_progress done"`
	Position *int    `json:"position,omitempty"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Status      string    `json:"status"`
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ParentID    *string   `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	boardService service.BoardService
	validator    *validator.Validate
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(boardService service.BoardService) *TaskHandler {
	return &TaskHandler{
		boardService: boardService,
		validator:    validator.New(),
	}
}

// CreateTask handles POST /api/projects/{projectID}/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid project ID")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := uuid.Parse(*req.ParentID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid parent task ID")
			return
		}
		parentID = &parsed
	}

	task, err := h.boardService.CreateTask(
		r.Context(),
		projectID,
		domain.TaskStatus(req.Status),
		req.Title,
		req.Description,
		parentID,
		req.Position,
	)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// MoveTask handles PATCH /api/tasks/{id}/move requests
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid task ID")
		return
	}

	var req MoveTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	var newStatus *domain.TaskStatus
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		newStatus = &status
	}

	task, err := h.boardService.MoveTask(r.Context(), taskID, newStatus, req.Position)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid task ID")
		return
	}

	task, err := h.boardService.GetTask(r.Context(), taskID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid task ID")
		return
	}

	if err := h.boardService.DeleteTask(r.Context(), taskID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLane handles GET /api/projects/{projectID}/lanes/{status} requests
func (h *TaskHandler) ListLane(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid project ID")
		return
	}

	status := domain.TaskStatus(chi.URLParam(r, "status"))
	if !domain.IsValidTaskStatus(status) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid lane status")
		return
	}

	tasks, err := h.boardService.ListLane(r.Context(), projectID, status)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		ProjectID:   task.ProjectID.String(),
		Status:      string(task.Status),
		Position:    task.Position,
		Title:       task.Title,
		Description: task.Description,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.ParentID != nil {
		parent := task.ParentID.String()
		resp.ParentID = &parent
	}
	return resp
}
