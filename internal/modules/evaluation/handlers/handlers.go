// Package handlers provides HTTP handlers for portfolio evaluation.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/persona/internal/modules/evaluation"
	"github.com/rs/zerolog"
)

// SummaryProvider computes the evaluation summary
type SummaryProvider interface {
	Summary() evaluation.Summary
}

// Handler handles evaluation HTTP requests
type Handler struct {
	provider SummaryProvider
	log      zerolog.Logger
}

// NewHandler creates a new evaluation handler
func NewHandler(provider SummaryProvider, log zerolog.Logger) *Handler {
	return &Handler{
		provider: provider,
		log:      log.With().Str("handler", "evaluation").Logger(),
	}
}

// HandleGetSummary handles GET /api/evaluation/summary.
// Metrics that do not apply to the current portfolio are null.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": h.provider.Summary(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
