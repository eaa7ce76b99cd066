// Package trading applies buy and sell orders to the persona's portfolio and
// keeps the record of executed trades.
package trading

import (
	"fmt"
	"strings"
	"time"
)

// TradeSide represents the side of a trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// IsValid checks if the trade side is valid
func (ts TradeSide) IsValid() bool {
	return ts == TradeSideBuy || ts == TradeSideSell
}

// TradeSideFromString creates TradeSide from string (case-insensitive)
func TradeSideFromString(value string) (TradeSide, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "BUY":
		return TradeSideBuy, nil
	case "SELL":
		return TradeSideSell, nil
	default:
		return "", fmt.Errorf("invalid trade side: %q", value)
	}
}

// TradeReason records why a trade was placed
type TradeReason string

const (
	ReasonRebalance TradeReason = "rebalance"
	ReasonSignal    TradeReason = "signal"
	ReasonManual    TradeReason = "manual"
)

// Trade represents an executed trade record
type Trade struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Side       TradeSide   `json:"side"`
	Quantity   float64     `json:"quantity"`
	Price      float64     `json:"price"`
	Value      float64     `json:"value"`
	Reason     TradeReason `json:"reason"`
	ExecutedAt time.Time   `json:"executed_at"`
}

// Validate validates trade data before it is persisted
func (t *Trade) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("symbol cannot be empty")
	}

	if !t.Side.IsValid() {
		return fmt.Errorf("invalid trade side: %q", t.Side)
	}

	if t.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	if t.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	return nil
}
