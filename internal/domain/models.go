// Package domain provides core domain models and types.
package domain

import (
	"math"
	"strings"
)

// QuantityEpsilon is the tolerance below which a quantity is treated as zero.
// Rebalancing arithmetic produces fractional quantities; a sell that leaves
// less than this behind removes the holding.
const QuantityEpsilon = 1e-9

// Holding represents one instrument owned by the persona.
// Every field is present with an explicit default so that policy and
// evaluation code never has to distinguish "missing" from "zero".
type Holding struct {
	Symbol            string  `json:"-" msgpack:"-"`
	Quantity          float64 `json:"quantity" msgpack:"quantity"`
	PurchasePrice     float64 `json:"purchase_price" msgpack:"purchase_price"` // First lot only
	CurrentPrice      float64 `json:"current_price" msgpack:"current_price"`
	DesiredAllocation float64 `json:"desired_allocation" msgpack:"desired_allocation"` // Fraction in [0,1]
	RiskScore         float64 `json:"risk_score" msgpack:"risk_score"`
	ShouldRebalance   bool    `json:"should_rebalance" msgpack:"should_rebalance"`
}

// NewHolding creates a holding acquired at price.
// Purchase and current price both start at the acquisition price.
func NewHolding(symbol string, quantity, price float64) Holding {
	return Holding{
		Symbol:        symbol,
		Quantity:      quantity,
		PurchasePrice: price,
		CurrentPrice:  price,
	}
}

// MarketValue returns quantity * current price
func (h Holding) MarketValue() float64 {
	return h.Quantity * h.CurrentPrice
}

// IsEmpty reports whether the holding quantity is zero within QuantityEpsilon
func (h Holding) IsEmpty() bool {
	return math.Abs(h.Quantity) < QuantityEpsilon
}

// Observation is the persona's current belief about one instrument.
type Observation struct {
	CurrentPrice  float64 `json:"current_price"`
	Sentiment     float64 `json:"sentiment"` // Nominally in [0,1], 0.5 is neutral
	IsUndervalued bool    `json:"is_undervalued"`
	IsOvervalued  bool    `json:"is_overvalued"`
}

// NormalizeSymbol trims surrounding whitespace.
// Case is preserved: symbols such as "StockA" are used verbatim as keys.
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(symbol)
}

// ValidQuantity reports whether q is a usable trade quantity (positive and finite)
func ValidQuantity(q float64) bool {
	return q > 0 && !math.IsInf(q, 0) && !math.IsNaN(q)
}
