package trading

import (
	"fmt"
	"time"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/events"
	"github.com/aristath/persona/internal/modules/portfolio"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TradeRecorder persists executed trades
type TradeRecorder interface {
	Create(trade Trade) error
}

// Executor applies trades to the portfolio store.
//
// Fills are instantaneous at the last known price. Cash is debited on buys
// and credited on sells when a CashManager is configured. Every executed
// trade is appended to the in-memory history and, when a TradeRecorder is
// configured, persisted; recorder failures are logged and do not undo the
// trade.
type Executor struct {
	holdings     *portfolio.Store
	prices       domain.PriceSource
	cash         domain.CashManager
	recorder     TradeRecorder
	eventManager *events.Manager
	history      []Trade
	now          func() time.Time
	log          zerolog.Logger
}

// NewExecutor creates a new trade executor. cash, recorder and eventManager
// are optional.
func NewExecutor(
	holdings *portfolio.Store,
	prices domain.PriceSource,
	cash domain.CashManager,
	recorder TradeRecorder,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Executor {
	return &Executor{
		holdings:     holdings,
		prices:       prices,
		cash:         cash,
		recorder:     recorder,
		eventManager: eventManager,
		now:          time.Now,
		log:          log.With().Str("service", "trading").Logger(),
	}
}

// Buy adds quantity of symbol to the portfolio.
//
// An existing holding has its quantity increased and keeps its original
// purchase price. A new holding is created with purchase and current price
// set to the market price. Either way the holding's current price is the
// fill price afterwards.
//
// Errors (wrapped): domain.ErrInvalidQuantity, domain.ErrNoMarketPrice,
// domain.ErrInsufficientCash.
func (e *Executor) Buy(symbol string, quantity float64, reason TradeReason) (*Trade, error) {
	if !domain.ValidQuantity(quantity) {
		return nil, e.reject(symbol, TradeSideBuy, quantity, reason,
			fmt.Errorf("buy %s: %w: %v", symbol, domain.ErrInvalidQuantity, quantity))
	}

	existing, held := e.holdings.Get(symbol)

	price, ok := e.prices.Price(symbol)
	if !ok && held && existing.CurrentPrice > 0 {
		price, ok = existing.CurrentPrice, true
	}
	if !ok {
		return nil, e.reject(symbol, TradeSideBuy, quantity, reason,
			fmt.Errorf("buy %s: %w", symbol, domain.ErrNoMarketPrice))
	}

	value := quantity * price
	if e.cash != nil {
		if err := e.cash.Debit(value); err != nil {
			return nil, e.reject(symbol, TradeSideBuy, quantity, reason, fmt.Errorf("buy %s: %w", symbol, err))
		}
	}

	if held {
		existing.Quantity += quantity
		existing.CurrentPrice = price
		e.holdings.Put(existing)
	} else {
		e.holdings.Put(domain.NewHolding(symbol, quantity, price))
	}

	return e.record(symbol, TradeSideBuy, quantity, price, reason), nil
}

// Sell removes quantity of symbol from the portfolio. A holding whose
// quantity reaches zero is removed. A request that exceeds the holding by
// less than domain.QuantityEpsilon sells the whole holding.
//
// Errors (wrapped): domain.ErrInvalidQuantity, domain.ErrUnknownSymbol,
// domain.ErrInsufficientHoldings.
func (e *Executor) Sell(symbol string, quantity float64, reason TradeReason) (*Trade, error) {
	if !domain.ValidQuantity(quantity) {
		return nil, e.reject(symbol, TradeSideSell, quantity, reason,
			fmt.Errorf("sell %s: %w: %v", symbol, domain.ErrInvalidQuantity, quantity))
	}

	h, held := e.holdings.Get(symbol)
	if !held {
		return nil, e.reject(symbol, TradeSideSell, quantity, reason,
			fmt.Errorf("sell %s: %w", symbol, domain.ErrUnknownSymbol))
	}
	if quantity > h.Quantity+domain.QuantityEpsilon {
		return nil, e.reject(symbol, TradeSideSell, quantity, reason,
			fmt.Errorf("sell %s: %w: requested %v, held %v", symbol, domain.ErrInsufficientHoldings, quantity, h.Quantity))
	}
	if quantity > h.Quantity {
		quantity = h.Quantity
	}

	price, ok := e.prices.Price(symbol)
	if ok {
		h.CurrentPrice = price
	} else {
		price = h.CurrentPrice
	}

	h.Quantity -= quantity
	e.holdings.Put(h)

	if e.cash != nil {
		e.cash.Credit(quantity * price)
	}

	return e.record(symbol, TradeSideSell, quantity, price, reason), nil
}

// History returns a copy of the executed trades in execution order
func (e *Executor) History() []Trade {
	out := make([]Trade, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Executor) record(symbol string, side TradeSide, quantity, price float64, reason TradeReason) *Trade {
	trade := Trade{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Side:       side,
		Quantity:   quantity,
		Price:      price,
		Value:      quantity * price,
		Reason:     reason,
		ExecutedAt: e.now(),
	}
	e.history = append(e.history, trade)

	if e.recorder != nil {
		if err := e.recorder.Create(trade); err != nil {
			e.log.Error().
				Err(err).
				Str("trade_id", trade.ID).
				Str("symbol", symbol).
				Msg("Failed to record trade in ledger")
		}
	}

	e.eventManager.Emit("trading", &events.TradeExecutedData{
		TradeID:  trade.ID,
		Symbol:   symbol,
		Side:     string(side),
		Quantity: quantity,
		Price:    price,
		Reason:   string(reason),
	})

	e.log.Info().
		Str("symbol", symbol).
		Str("side", string(side)).
		Float64("quantity", quantity).
		Float64("price", price).
		Str("reason", string(reason)).
		Msg("Trade executed")

	return &trade
}

func (e *Executor) reject(symbol string, side TradeSide, quantity float64, reason TradeReason, err error) error {
	e.log.Warn().
		Err(err).
		Str("symbol", symbol).
		Str("side", string(side)).
		Float64("quantity", quantity).
		Msg("Trade rejected")

	e.eventManager.Emit("trading", &events.TradeRejectedData{
		Symbol:   symbol,
		Side:     string(side),
		Quantity: quantity,
		Reason:   string(reason),
		Error:    err.Error(),
	})

	return err
}
