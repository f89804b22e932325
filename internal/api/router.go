package api

import (
	"github.com/St1cky1/task-manager/internal/api/handlers"
	"github.com/St1cky1/task-manager/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter собирает HTTP API. health может быть nil.
func NewRouter(taskService *usecase.TaskService, health handlers.HealthChecker) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	taskHandler := handlers.NewTaskHandler(taskService)
	healthHandler := handlers.NewHealthHandler(health)

	r.Get("/healthz", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Get("/filter", taskHandler.SearchTasks)
			r.Get("/user/{assignedUserId}", taskHandler.ListByAssignee)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.EditTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Post("/start", taskHandler.StartTask)
				r.Post("/complete", taskHandler.CompleteTask)
			})
		})
	})

	return r
}
