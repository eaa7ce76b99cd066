// Package handlers provides HTTP handlers for market knowledge.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/modules/market"
	"github.com/rs/zerolog"
)

// KnowledgeAgent reads and refreshes the persona's market knowledge
type KnowledgeAgent interface {
	Knowledge() map[string]domain.Observation
	ConductMarketResearch(ctx context.Context, researcher market.Researcher) (int, error)
}

// Handler handles market HTTP requests
type Handler struct {
	agent KnowledgeAgent
	log   zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(agent KnowledgeAgent, log zerolog.Logger) *Handler {
	return &Handler{
		agent: agent,
		log:   log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetKnowledge handles GET /api/market/knowledge
func (h *Handler) HandleGetKnowledge(w http.ResponseWriter, r *http.Request) {
	knowledge := h.agent.Knowledge()
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"observations": knowledge,
		"count":        len(knowledge),
	})
}

// HandleResearch handles POST /api/market/research.
// The body is a symbol to observation map merged into market knowledge.
func (h *Handler) HandleResearch(w http.ResponseWriter, r *http.Request) {
	var update map[string]domain.Observation
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	merged, err := h.agent.ConductMarketResearch(r.Context(), market.StaticResearcher(update))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to merge research")
		h.writeError(w, http.StatusInternalServerError, "Failed to merge research")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"merged": merged,
	})
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
