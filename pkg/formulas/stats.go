// Package formulas holds the numeric helpers used by the evaluator and by
// research collaborators.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// SimpleReturn is (current - purchase) / purchase.
// Returns nil when the purchase price is not positive.
func SimpleReturn(purchasePrice, currentPrice float64) *float64 {
	if purchasePrice <= 0 || math.IsNaN(purchasePrice) || math.IsNaN(currentPrice) {
		return nil
	}
	r := (currentPrice - purchasePrice) / purchasePrice
	return &r
}
