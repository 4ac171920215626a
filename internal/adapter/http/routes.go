package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Tasks
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Put("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)

		// Per-task timers (nested under tasks)
		r.Post("/tasks/{id}/timer/start", h.StartTimer)
		r.Post("/tasks/{id}/timer/stop", h.StopTimer)
		r.Post("/tasks/{id}/timer/toggle", h.ToggleTimer)
		r.Post("/tasks/{id}/timer/reset", h.ResetTimer)

		// Timers (board-wide)
		r.Get("/timers/running", h.RunningTimers)
		r.Post("/timers/pause-all", h.PauseAllTimers)
		r.Post("/timers/reset-all", h.ResetAllTimers)

		// Documents
		r.Post("/documents/generate", h.GenerateDocument)
		r.Get("/documents", h.ListDocuments)
		r.Get("/documents/{id}", h.GetDocument)
		r.Delete("/documents/{id}", h.DeleteDocument)

		// Office configuration
		r.Get("/office", h.GetOffice)
		r.Put("/office", h.SaveOffice)

		// Petition credits
		r.Get("/credits", h.CreditBalance)
	})
}
