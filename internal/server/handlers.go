package server

import (
	"encoding/json"
	"net/http"
)

// healthResponse is the body of GET /health
type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Persona  string `json:"persona"`
	Role     string `json:"role"`
	Holdings int    `json:"holdings"`
	Ledger   bool   `json:"ledger"`
}

// handleHealth reports liveness and a minimal view of the running persona
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "healthy",
		Service:  "persona",
		Persona:  s.agent.Name(),
		Role:     s.agent.Role(),
		Holdings: len(s.agent.Holdings()),
		Ledger:   s.ledgerDB != nil,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
