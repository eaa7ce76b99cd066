// Package rebalancing runs the persona's manage cycle: rebalancing flagged
// holdings toward their target allocation, then acting on market signals.
package rebalancing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/events"
	"github.com/aristath/persona/internal/modules/allocation"
	"github.com/aristath/persona/internal/modules/policy"
	"github.com/aristath/persona/internal/modules/trading"
	"github.com/rs/zerolog"
)

// Default signal sizing
const (
	DefaultRiskTolerance      = 0.5
	DefaultSignalBuyFraction  = 0.1
	DefaultSignalSellFraction = 1.0
)

// KnowledgeReader is the market knowledge the cycle scans for signals
type KnowledgeReader interface {
	Symbols() []string
	Get(symbol string) (domain.Observation, bool)
}

// HoldingsReader is the portfolio view the cycle rebalances
type HoldingsReader interface {
	Symbols() []string
	Get(symbol string) (domain.Holding, bool)
}

// TradeExecutor applies the trades the cycle decides on
type TradeExecutor interface {
	Buy(symbol string, quantity float64, reason trading.TradeReason) (*trading.Trade, error)
	Sell(symbol string, quantity float64, reason trading.TradeReason) (*trading.Trade, error)
}

// CashReader reports the cash available for signal buys
type CashReader interface {
	Balance() float64
}

// SizingConfig controls how large signal trades are.
//
// A signal buy spends Balance * RiskTolerance * BuyFraction, rounded down to
// whole units at the observed price. A signal sell disposes of
// SellFraction of the held quantity.
type SizingConfig struct {
	RiskTolerance float64
	BuyFraction   float64
	SellFraction  float64
}

// DefaultSizingConfig returns the default signal sizing
func DefaultSizingConfig() SizingConfig {
	return SizingConfig{
		RiskTolerance: DefaultRiskTolerance,
		BuyFraction:   DefaultSignalBuyFraction,
		SellFraction:  DefaultSignalSellFraction,
	}
}

// Manager orchestrates the manage cycle
type Manager struct {
	knowledge    KnowledgeReader
	holdings     HoldingsReader
	calculator   *allocation.Calculator
	executor     TradeExecutor
	cash         CashReader
	sizing       SizingConfig
	eventManager *events.Manager
	now          func() time.Time
	log          zerolog.Logger
}

// NewManager creates a new manage-cycle orchestrator. cash and eventManager
// may be nil; without cash no signal buy is ever sized above zero.
func NewManager(
	knowledge KnowledgeReader,
	holdings HoldingsReader,
	calculator *allocation.Calculator,
	executor TradeExecutor,
	cash CashReader,
	sizing SizingConfig,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		knowledge:    knowledge,
		holdings:     holdings,
		calculator:   calculator,
		executor:     executor,
		cash:         cash,
		sizing:       sizing,
		eventManager: eventManager,
		now:          time.Now,
		log:          log.With().Str("service", "rebalancing").Logger(),
	}
}

// Sizing returns the signal sizing in effect
func (m *Manager) Sizing() SizingConfig {
	return m.sizing
}

// SetRiskTolerance changes the tolerance used for signal buys
func (m *Manager) SetRiskTolerance(tolerance float64) {
	m.sizing.RiskTolerance = tolerance
}

// ManageCycle runs one cycle.
//
// Step 1 walks holdings in symbol order and, for every holding flagged for
// rebalancing, buys or sells toward its desired allocation. Step 2 walks the
// market knowledge in symbol order and buys on a buy signal, otherwise sells
// on a sell signal.
//
// A failed trade is recorded in the report and the cycle continues. When ctx
// is cancelled the cycle stops before the next trade and returns the partial
// report with ctx.Err().
func (m *Manager) ManageCycle(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{StartedAt: m.now(), Outcomes: make([]TradeOutcome, 0)}

	if err := m.rebalanceHoldings(ctx, report); err != nil {
		return m.abort(report, err)
	}
	if err := m.actOnSignals(ctx, report); err != nil {
		return m.abort(report, err)
	}

	report.FinishedAt = m.now()

	cycleData := &events.CycleCompletedData{
		Rebalanced: report.Rebalanced,
		Signals:    report.Signals,
		Failed:     report.Failed,
		TotalValue: m.calculator.TotalValue(),
	}
	if m.cash != nil {
		cycleData.Cash = m.cash.Balance()
	}
	m.eventManager.Emit("rebalancing", cycleData)

	m.log.Info().
		Int("rebalanced", report.Rebalanced).
		Int("signals", report.Signals).
		Int("failed", report.Failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Manage cycle completed")

	return report, nil
}

func (m *Manager) rebalanceHoldings(ctx context.Context, report *CycleReport) error {
	for _, symbol := range m.holdings.Symbols() {
		h, ok := m.holdings.Get(symbol)
		if !ok || !policy.ShouldRebalance(h) {
			continue
		}

		current := m.calculator.CurrentAllocation(symbol)
		desired := h.DesiredAllocation

		var (
			side     trading.TradeSide
			quantity float64
		)
		switch {
		case desired > current:
			side, quantity = trading.TradeSideBuy, m.calculator.AmountToBuy(symbol, desired, current)
		case desired < current:
			side, quantity = trading.TradeSideSell, m.calculator.AmountToSell(symbol, desired, current)
		default:
			continue
		}

		// Drift too small to express as a quantity
		if quantity < domain.QuantityEpsilon {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		m.log.Debug().
			Str("symbol", symbol).
			Float64("current", current).
			Float64("desired", desired).
			Float64("quantity", quantity).
			Msg("Rebalancing holding")

		report.add(m.execute(symbol, side, quantity, trading.ReasonRebalance))
	}
	return nil
}

func (m *Manager) actOnSignals(ctx context.Context, report *CycleReport) error {
	for _, symbol := range m.knowledge.Symbols() {
		o, ok := m.knowledge.Get(symbol)
		if !ok {
			continue
		}

		var outcome TradeOutcome
		switch policy.Decide(o) {
		case policy.SignalBuy:
			quantity, err := m.buySize(symbol, o)
			if err != nil {
				outcome = TradeOutcome{Symbol: symbol, Side: trading.TradeSideBuy, Reason: trading.ReasonSignal, Err: err}
				break
			}
			if quantity <= 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome = m.execute(symbol, trading.TradeSideBuy, quantity, trading.ReasonSignal)

		case policy.SignalSell:
			h, held := m.holdings.Get(symbol)
			if !held {
				outcome = m.rejectUnheld(symbol)
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome = m.execute(symbol, trading.TradeSideSell, h.Quantity*m.sizing.SellFraction, trading.ReasonSignal)

		default:
			continue
		}

		report.add(outcome)
	}
	return nil
}

// buySize returns whole units purchasable with the signal budget at the
// observed price
func (m *Manager) buySize(symbol string, o domain.Observation) (float64, error) {
	if o.CurrentPrice <= 0 {
		return 0, fmt.Errorf("buy %s: %w", symbol, domain.ErrNoMarketPrice)
	}
	if m.cash == nil {
		return 0, nil
	}
	budget := m.cash.Balance() * m.sizing.RiskTolerance * m.sizing.BuyFraction
	if budget <= 0 {
		return 0, nil
	}
	return math.Floor(budget / o.CurrentPrice), nil
}

func (m *Manager) execute(symbol string, side trading.TradeSide, quantity float64, reason trading.TradeReason) TradeOutcome {
	outcome := TradeOutcome{Symbol: symbol, Side: side, Quantity: quantity, Reason: reason}

	var (
		trade *trading.Trade
		err   error
	)
	if side == trading.TradeSideBuy {
		trade, err = m.executor.Buy(symbol, quantity, reason)
	} else {
		trade, err = m.executor.Sell(symbol, quantity, reason)
	}
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Trade = trade
	outcome.Quantity = trade.Quantity
	return outcome
}

// rejectUnheld reports a sell signal for a symbol that is not held the same
// way the executor reports a rejected trade.
func (m *Manager) rejectUnheld(symbol string) TradeOutcome {
	err := fmt.Errorf("sell %s: %w", symbol, domain.ErrUnknownSymbol)

	m.log.Warn().
		Err(err).
		Str("symbol", symbol).
		Str("side", string(trading.TradeSideSell)).
		Msg("Trade rejected")

	m.eventManager.Emit("rebalancing", &events.TradeRejectedData{
		Symbol: symbol,
		Side:   string(trading.TradeSideSell),
		Reason: string(trading.ReasonSignal),
		Error:  err.Error(),
	})

	return TradeOutcome{
		Symbol: symbol,
		Side:   trading.TradeSideSell,
		Reason: trading.ReasonSignal,
		Err:    err,
	}
}

func (m *Manager) abort(report *CycleReport, err error) (*CycleReport, error) {
	report.FinishedAt = m.now()
	m.log.Warn().
		Err(err).
		Int("attempted", len(report.Outcomes)).
		Msg("Manage cycle interrupted")
	return report, err
}
