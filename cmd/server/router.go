package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskflow/taskflow-api/internal/api"
	apiMiddleware "github.com/taskflow/taskflow-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	projectHandler := api.NewProjectHandler(app.boardService)
	taskHandler := api.NewTaskHandler(app.boardService)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Project endpoints
		r.Post("/projects", projectHandler.CreateProject)
		r.Get("/projects/{projectID}", projectHandler.GetProject)

		// Board endpoints
		r.Post("/projects/{projectID}/tasks", taskHandler.CreateTask)
		r.Get("/projects/{projectID}/lanes/{status}", taskHandler.ListLane)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Patch("/tasks/{id}/move", taskHandler.MoveTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
