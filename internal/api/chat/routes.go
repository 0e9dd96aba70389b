package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", h.SendMessage)
		r.Post("/sessions", h.StartSession)
		r.Get("/sessions/{id}/history", h.GetHistory)
		r.Get("/sessions/{id}/transcript", h.GetTranscript)
		r.Delete("/sessions/{id}", h.ResetSession)
	})
}
