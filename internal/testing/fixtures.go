package testing

import "github.com/aristath/persona/internal/domain"

// NewObservationFixtures returns market knowledge covering each signal outcome:
// BUYME triggers a buy, SELLME a sell, HOLDME neither.
func NewObservationFixtures() map[string]domain.Observation {
	return map[string]domain.Observation{
		"BUYME":  {CurrentPrice: 100, Sentiment: 0.6, IsUndervalued: true},
		"SELLME": {CurrentPrice: 50, Sentiment: 0.4},
		"HOLDME": {CurrentPrice: 20, Sentiment: 0.5},
	}
}

// NewBalancedHoldings returns two holdings each worth 500 (total 1000).
// StockA targets 0.7 and is flagged for rebalancing.
func NewBalancedHoldings() map[string]domain.Holding {
	return map[string]domain.Holding{
		"StockA": {
			Symbol:            "StockA",
			Quantity:          5,
			PurchasePrice:     100,
			CurrentPrice:      100,
			DesiredAllocation: 0.7,
			ShouldRebalance:   true,
		},
		"StockB": {
			Symbol:        "StockB",
			Quantity:      10,
			PurchasePrice: 50,
			CurrentPrice:  50,
		},
	}
}
