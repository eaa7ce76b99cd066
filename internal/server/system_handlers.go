package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/persona/internal/database"
	"github.com/aristath/persona/internal/modules/persona"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// TradeCounter counts persisted trades
type TradeCounter interface {
	Count() (int, error)
}

// SystemHandlers handles system status requests
type SystemHandlers struct {
	log       zerolog.Logger
	agent     *persona.Agent
	trades    TradeCounter
	ledgerDB  *database.DB
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance.
// trades and ledgerDB are nil when the ledger is disabled.
func NewSystemHandlers(log zerolog.Logger, agent *persona.Agent, trades TradeCounter, ledgerDB *database.DB) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		agent:     agent,
		ledgerDB:  ledgerDB,
		startedAt: time.Now(),
	}
	// Avoid storing a typed nil in the interface
	if ledgerDB != nil && trades != nil {
		h.trades = trades
	}
	return h
}

// PersonaStatus describes the running persona
type PersonaStatus struct {
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	Holdings      int     `json:"holdings"`
	Cash          float64 `json:"cash"`
	RiskTolerance float64 `json:"risk_tolerance"`
	SessionTrades int     `json:"session_trades"`
}

// LedgerStatus describes the trade ledger
type LedgerStatus struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
	Trades  int    `json:"trades"`
	Healthy bool   `json:"healthy"`
}

// SystemStatusResponse represents system status
type SystemStatusResponse struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryPercent float64       `json:"memory_percent"`
	Persona       PersonaStatus `json:"persona"`
	Ledger        LedgerStatus  `json:"ledger"`
	LastChecked   string        `json:"last_checked"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Persona: PersonaStatus{
			Name:          h.agent.Name(),
			Role:          h.agent.Role(),
			Holdings:      len(h.agent.Holdings()),
			Cash:          h.agent.CashReserves(),
			RiskTolerance: h.agent.RiskTolerance(),
			SessionTrades: len(h.agent.TransactionHistory()),
		},
		Ledger:      h.ledgerStatus(r.Context()),
		LastChecked: time.Now().Format(time.RFC3339),
	}
	if response.Ledger.Enabled && !response.Ledger.Healthy {
		response.Status = "degraded"
	}

	h.writeJSON(w, response)
}

func (h *SystemHandlers) ledgerStatus(ctx context.Context) LedgerStatus {
	if h.ledgerDB == nil {
		return LedgerStatus{}
	}

	status := LedgerStatus{Enabled: true, Path: h.ledgerDB.Path(), Healthy: true}
	if err := h.ledgerDB.QuickCheck(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Ledger integrity check failed")
		status.Healthy = false
	}
	if h.trades != nil {
		count, err := h.trades.Count()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count ledger trades")
			status.Healthy = false
		}
		status.Trades = count
	}
	return status
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
