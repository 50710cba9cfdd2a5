package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all instrument routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/instruments", func(r chi.Router) {
		r.Get("/", h.HandleListInstruments)
		r.Post("/refresh", h.HandleRefresh)

		r.Get("/{symbol}", h.HandleGetInstrument)
		r.Get("/{symbol}/growth", h.HandleGetGrowth)
		r.Get("/{symbol}/history", h.HandleGetHistory)
	})
}
