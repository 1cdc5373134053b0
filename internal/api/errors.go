// Package api implements the HTTP handlers for the task board.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskflow/taskflow-api/internal/api/shared"
	"github.com/taskflow/taskflow-api/internal/board"
	"github.com/taskflow/taskflow-api/internal/domain"
	"github.com/taskflow/taskflow-api/internal/store"
)

// respondWithServiceError maps service and board errors to HTTP status
// codes and writes a sanitized JSON error response. The full error is
// logged; the client sees only the category.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case store.IsNotFoundError(err):
		shared.RespondWithError(w, r, http.StatusNotFound, "resource not found")
	case errors.Is(err, board.ErrLockTimeout):
		// The mutation lost the race for its lane; the whole operation
		// is safe to retry.
		w.Header().Set("Retry-After", "1")
		shared.RespondWithError(w, r, http.StatusConflict, "board is busy, retry the request")
	case errors.Is(err, store.ErrInvalidEntity):
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, "referenced entity does not exist")
	case errors.Is(err, store.ErrDuplicate):
		shared.RespondWithError(w, r, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidTaskStatus),
		isDomainValidationError(err):
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request: "+err.Error())
	default:
		slog.ErrorContext(r.Context(), "unhandled service error",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// isDomainValidationError reports whether the error is one of the
// field-level domain sentinels (empty title, bad status, ...).
func isDomainValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrTaskTitleEmpty,
		domain.ErrTaskProjectIDEmpty,
		domain.ErrProjectNameEmpty,
		domain.ErrProjectOwnerIDEmpty,
		domain.ErrInvalidPosition,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
