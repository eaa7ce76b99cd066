// Package evaluation aggregates return and risk metrics over the persona's
// current holdings.
package evaluation

import (
	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/pkg/formulas"
)

// HoldingsReader is the read-only view of the portfolio the evaluator needs
type HoldingsReader interface {
	List() []domain.Holding
}

// CashReader reports the cash balance included in summaries
type CashReader interface {
	Balance() float64
}

// Evaluator computes read-only metrics over the portfolio.
// Metrics that are undefined for the current holdings are returned as nil.
type Evaluator struct {
	holdings HoldingsReader
	cash     CashReader
}

// NewEvaluator creates an evaluator. cash may be nil.
func NewEvaluator(holdings HoldingsReader, cash CashReader) *Evaluator {
	return &Evaluator{holdings: holdings, cash: cash}
}

// Summary bundles every metric for reporting
type Summary struct {
	Holdings         int      `json:"holdings"`
	TotalValue       float64  `json:"total_value"`
	Cash             float64  `json:"cash"`
	AverageReturn    *float64 `json:"average_return"`
	AverageRisk      *float64 `json:"average_risk"`
	ReturnVolatility *float64 `json:"return_volatility"`
}

// EvaluatePerformance returns the mean simple return across holdings.
// Holdings without a positive purchase price are skipped; nil is returned
// when no holding has a usable return.
func (e *Evaluator) EvaluatePerformance() *float64 {
	returns := e.returns()
	if len(returns) == 0 {
		return nil
	}
	mean := formulas.Mean(returns)
	return &mean
}

// AssessRisk returns the mean risk score across holdings, nil when empty
func (e *Evaluator) AssessRisk() *float64 {
	holdings := e.holdings.List()
	if len(holdings) == 0 {
		return nil
	}

	scores := make([]float64, len(holdings))
	for i, h := range holdings {
		scores[i] = h.RiskScore
	}
	mean := formulas.Mean(scores)
	return &mean
}

// ReturnVolatility returns the sample standard deviation of per-holding
// returns. Requires at least two holdings with a usable return.
func (e *Evaluator) ReturnVolatility() *float64 {
	returns := e.returns()
	if len(returns) < 2 {
		return nil
	}
	sd := formulas.StdDev(returns)
	return &sd
}

// Summary computes every metric in one pass over the holdings
func (e *Evaluator) Summary() Summary {
	holdings := e.holdings.List()

	var total float64
	for _, h := range holdings {
		total += h.MarketValue()
	}

	s := Summary{
		Holdings:         len(holdings),
		TotalValue:       total,
		AverageReturn:    e.EvaluatePerformance(),
		AverageRisk:      e.AssessRisk(),
		ReturnVolatility: e.ReturnVolatility(),
	}
	if e.cash != nil {
		s.Cash = e.cash.Balance()
	}
	return s
}

func (e *Evaluator) returns() []float64 {
	holdings := e.holdings.List()
	returns := make([]float64, 0, len(holdings))
	for _, h := range holdings {
		if r := formulas.SimpleReturn(h.PurchasePrice, h.CurrentPrice); r != nil {
			returns = append(returns, *r)
		}
	}
	return returns
}
