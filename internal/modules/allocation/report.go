package allocation

import (
	"math"
	"sort"
)

// HoldingAllocation describes one holding's place in the portfolio
type HoldingAllocation struct {
	Symbol       string  `json:"symbol"`
	CurrentValue float64 `json:"current_value"`
	CurrentPct   float64 `json:"current_pct"`
	TargetPct    float64 `json:"target_pct"`
	Deviation    float64 `json:"deviation"`
	Rebalance    bool    `json:"rebalance"`
}

// Allocations returns every holding's allocation ordered by symbol.
// Percentages are fractions in [0,1] rounded to 4 places; values to 2.
func (c *Calculator) Allocations() []HoldingAllocation {
	holdings := c.holdings.List()
	total := 0.0
	for _, h := range holdings {
		total += h.MarketValue()
	}

	allocations := make([]HoldingAllocation, 0, len(holdings))
	for _, h := range holdings {
		value := h.MarketValue()

		var currentPct float64
		if total > 0 {
			currentPct = value / total
		}

		allocations = append(allocations, HoldingAllocation{
			Symbol:       h.Symbol,
			CurrentValue: round(value, 2),
			CurrentPct:   round(currentPct, 4),
			TargetPct:    h.DesiredAllocation,
			Deviation:    round(currentPct-h.DesiredAllocation, 4),
			Rebalance:    h.ShouldRebalance,
		})
	}

	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].Symbol < allocations[j].Symbol
	})

	return allocations
}

// round rounds a float64 to n decimal places
func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
