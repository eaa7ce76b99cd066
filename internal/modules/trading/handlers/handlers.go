// Package handlers provides HTTP handlers for trade execution.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/modules/trading"
	"github.com/rs/zerolog"
)

// Trader executes manual trades and reports the session's history
type Trader interface {
	Buy(symbol string, quantity float64) (*trading.Trade, error)
	Sell(symbol string, quantity float64) (*trading.Trade, error)
	TransactionHistory() []trading.Trade
}

// TradeHistoryReader reads persisted trades
type TradeHistoryReader interface {
	GetHistory(limit int) ([]trading.Trade, error)
}

// TradingHandlers contains HTTP handlers for trading API
type TradingHandlers struct {
	trader    Trader
	tradeRepo TradeHistoryReader
	log       zerolog.Logger
}

// NewTradingHandlers creates a new trading handlers instance.
// tradeRepo is optional; without it history comes from the in-memory record.
func NewTradingHandlers(trader Trader, tradeRepo TradeHistoryReader, log zerolog.Logger) *TradingHandlers {
	return &TradingHandlers{
		trader:    trader,
		tradeRepo: tradeRepo,
		log:       log.With().Str("handler", "trading").Logger(),
	}
}

// TradeRequest is the body of buy and sell requests
type TradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// StatusForError maps trade errors to HTTP status codes
func StatusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSymbol):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientHoldings), errors.Is(err, domain.ErrInsufficientCash):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoMarketPrice):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleBuy handles POST /api/trading/buy
func (h *TradingHandlers) HandleBuy(w http.ResponseWriter, r *http.Request) {
	h.handleTrade(w, r, trading.TradeSideBuy)
}

// HandleSell handles POST /api/trading/sell
func (h *TradingHandlers) HandleSell(w http.ResponseWriter, r *http.Request) {
	h.handleTrade(w, r, trading.TradeSideSell)
}

func (h *TradingHandlers) handleTrade(w http.ResponseWriter, r *http.Request, side trading.TradeSide) {
	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if domain.NormalizeSymbol(req.Symbol) == "" {
		h.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	var (
		trade *trading.Trade
		err   error
	)
	if side == trading.TradeSideBuy {
		trade, err = h.trader.Buy(req.Symbol, req.Quantity)
	} else {
		trade, err = h.trader.Sell(req.Symbol, req.Quantity)
	}
	if err != nil {
		h.writeError(w, StatusForError(err), err.Error())
		return
	}

	h.writeData(w, http.StatusOK, trade)
}

// HandleGetHistory handles GET /api/trading/history
// Optional ?limit=N returns only the most recent N trades.
func (h *TradingHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	source := "session"
	var trades []trading.Trade
	if h.tradeRepo != nil {
		var err error
		trades, err = h.tradeRepo.GetHistory(limit)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to get trade history")
			h.writeError(w, http.StatusInternalServerError, "Failed to get trade history")
			return
		}
		source = "ledger"
	} else {
		trades = h.trader.TransactionHistory()
		if limit > 0 && len(trades) > limit {
			trades = trades[len(trades)-limit:]
		}
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"trades": trades,
		"count":  len(trades),
		"source": source,
	})
}

func (h *TradingHandlers) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *TradingHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *TradingHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
