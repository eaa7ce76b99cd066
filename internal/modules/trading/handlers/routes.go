package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trading routes
func (h *TradingHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/trading", func(r chi.Router) {
		r.Post("/buy", h.HandleBuy)           // Manual buy
		r.Post("/sell", h.HandleSell)         // Manual sell
		r.Get("/history", h.HandleGetHistory) // Executed trades
	})
}
