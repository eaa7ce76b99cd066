// Package allocation computes each holding's share of portfolio market value
// and the quantities needed to move it to a target share.
package allocation

import (
	"github.com/aristath/persona/internal/domain"
)

// HoldingsReader is the read side of the portfolio store used by the calculator
type HoldingsReader interface {
	Get(symbol string) (domain.Holding, bool)
	List() []domain.Holding
}

// Calculator computes allocations over current market value (not cost basis),
// so both price drift and quantity changes move a holding's allocation.
type Calculator struct {
	holdings HoldingsReader
}

// NewCalculator creates a calculator reading from holdings
func NewCalculator(holdings HoldingsReader) *Calculator {
	return &Calculator{holdings: holdings}
}

// TotalValue returns the sum of quantity * current price over all holdings
func (c *Calculator) TotalValue() float64 {
	total := 0.0
	for _, h := range c.holdings.List() {
		total += h.MarketValue()
	}
	return total
}

// CurrentAllocation returns symbol's fraction of total portfolio value.
// Returns 0 when the portfolio has no value or the symbol is not held.
func (c *Calculator) CurrentAllocation(symbol string) float64 {
	total := c.TotalValue()
	if total <= 0 {
		return 0
	}
	h, ok := c.holdings.Get(symbol)
	if !ok {
		return 0
	}
	return h.MarketValue() / total
}

// AmountToBuy returns the quantity to buy so that symbol moves from current
// to desired allocation: (desired - current) * total / price.
// The result is negative when current exceeds desired; only call it on the
// buy branch. Returns 0 when symbol is not held or has no positive price.
func (c *Calculator) AmountToBuy(symbol string, desired, current float64) float64 {
	price, ok := c.price(symbol)
	if !ok {
		return 0
	}
	return (desired - current) * c.TotalValue() / price
}

// AmountToSell mirrors AmountToBuy: (current - desired) * total / price
func (c *Calculator) AmountToSell(symbol string, desired, current float64) float64 {
	price, ok := c.price(symbol)
	if !ok {
		return 0
	}
	return (current - desired) * c.TotalValue() / price
}

func (c *Calculator) price(symbol string) (float64, bool) {
	h, ok := c.holdings.Get(symbol)
	if !ok || h.CurrentPrice <= 0 {
		return 0, false
	}
	return h.CurrentPrice, true
}
