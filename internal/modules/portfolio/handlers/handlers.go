// Package handlers provides HTTP handlers for the persona's portfolio.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/modules/allocation"
	"github.com/aristath/persona/internal/modules/rebalancing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PortfolioAgent is the slice of the persona the portfolio routes use
type PortfolioAgent interface {
	Holdings() []domain.Holding
	Allocations() []allocation.HoldingAllocation
	CashReserves() float64
	SetTarget(symbol string, desired float64, shouldRebalance bool) error
	SaveSnapshot(dir string) (string, error)
	ManageCycle(ctx context.Context) (*rebalancing.CycleReport, error)
}

// Handler handles portfolio HTTP requests
type Handler struct {
	agent   PortfolioAgent
	dataDir string
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler. Snapshots are saved to dataDir.
func NewHandler(agent PortfolioAgent, dataDir string, log zerolog.Logger) *Handler {
	return &Handler{
		agent:   agent,
		dataDir: dataDir,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HoldingResponse is a holding as exposed over the API
type HoldingResponse struct {
	Symbol            string  `json:"symbol"`
	Quantity          float64 `json:"quantity"`
	PurchasePrice     float64 `json:"purchase_price"`
	CurrentPrice      float64 `json:"current_price"`
	MarketValue       float64 `json:"market_value"`
	DesiredAllocation float64 `json:"desired_allocation"`
	RiskScore         float64 `json:"risk_score"`
	ShouldRebalance   bool    `json:"should_rebalance"`
}

// SetTargetRequest is the body of PUT /portfolio/holdings/{symbol}/target
type SetTargetRequest struct {
	DesiredAllocation float64 `json:"desired_allocation"`
	ShouldRebalance   *bool   `json:"should_rebalance"`
}

// HandleGetHoldings handles GET /api/portfolio/holdings
func (h *Handler) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	holdings := h.agent.Holdings()

	out := make([]HoldingResponse, 0, len(holdings))
	for _, holding := range holdings {
		out = append(out, HoldingResponse{
			Symbol:            holding.Symbol,
			Quantity:          holding.Quantity,
			PurchasePrice:     holding.PurchasePrice,
			CurrentPrice:      holding.CurrentPrice,
			MarketValue:       holding.MarketValue(),
			DesiredAllocation: holding.DesiredAllocation,
			RiskScore:         holding.RiskScore,
			ShouldRebalance:   holding.ShouldRebalance,
		})
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"holdings": out,
		"count":    len(out),
		"cash":     h.agent.CashReserves(),
	})
}

// HandleGetAllocations handles GET /api/portfolio/allocations
func (h *Handler) HandleGetAllocations(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"allocations": h.agent.Allocations(),
	})
}

// HandleSetTarget handles PUT /api/portfolio/holdings/{symbol}/target
func (h *Handler) HandleSetTarget(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var req SetTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Setting a target implies rebalancing toward it unless told otherwise
	shouldRebalance := true
	if req.ShouldRebalance != nil {
		shouldRebalance = *req.ShouldRebalance
	}

	if err := h.agent.SetTarget(symbol, req.DesiredAllocation, shouldRebalance); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrUnknownSymbol) {
			status = http.StatusNotFound
		}
		h.writeError(w, status, err.Error())
		return
	}

	h.log.Info().
		Str("symbol", symbol).
		Float64("desired_allocation", req.DesiredAllocation).
		Bool("should_rebalance", shouldRebalance).
		Msg("Target allocation updated")

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"symbol":             symbol,
		"desired_allocation": req.DesiredAllocation,
		"should_rebalance":   shouldRebalance,
	})
}

// HandleSave handles POST /api/portfolio/save
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	path, err := h.agent.SaveSnapshot(h.dataDir)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save portfolio snapshot")
		h.writeError(w, http.StatusInternalServerError, "Failed to save portfolio snapshot")
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"path": path,
	})
}

// HandleManage handles POST /api/portfolio/manage
func (h *Handler) HandleManage(w http.ResponseWriter, r *http.Request) {
	report, err := h.agent.ManageCycle(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("Manage cycle interrupted")
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": err.Error(),
			"data":  report,
		})
		return
	}

	h.writeData(w, http.StatusOK, report)
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
