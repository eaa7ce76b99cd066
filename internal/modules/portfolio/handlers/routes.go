package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/holdings", h.HandleGetHoldings)               // Current holdings
		r.Put("/holdings/{symbol}/target", h.HandleSetTarget) // Desired allocation
		r.Get("/allocations", h.HandleGetAllocations)         // Current vs target shares
		r.Post("/save", h.HandleSave)                         // Write snapshot
		r.Post("/manage", h.HandleManage)                     // Run one manage cycle
	})
}
