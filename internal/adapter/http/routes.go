package http

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		// Task feed and lifecycle
		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Post("/tasks/{id}/claim", h.ClaimTask)
		r.Post("/tasks/{id}/submit", h.SubmitTask)
		r.Post("/tasks/{id}/approve", h.ApproveTask)
		r.Post("/tasks/{id}/reject", h.RejectTask)

		// Offers
		r.Get("/tasks/{id}/offers", h.ListOffers)
		r.Post("/tasks/{id}/offers", h.PlaceOffer)

		// Audit and identity
		r.Get("/tasks/{id}/events", h.ListTaskEvents)
		r.Get("/tasks/{id}/role", h.GetRole)
	})
}
