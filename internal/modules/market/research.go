package market

import (
	"context"
	"fmt"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/pkg/formulas"
)

// Researcher supplies fresh observations. Where the data comes from is the
// implementation's concern; the knowledge store only merges the result.
type Researcher interface {
	Research(ctx context.Context) (map[string]domain.Observation, error)
}

// ResearcherFunc adapts a function to the Researcher interface
type ResearcherFunc func(ctx context.Context) (map[string]domain.Observation, error)

// Research calls f(ctx)
func (f ResearcherFunc) Research(ctx context.Context) (map[string]domain.Observation, error) {
	return f(ctx)
}

// StaticResearcher always returns the same update
func StaticResearcher(update map[string]domain.Observation) Researcher {
	return ResearcherFunc(func(ctx context.Context) (map[string]domain.Observation, error) {
		return update, nil
	})
}

// RSI thresholds used to derive valuation flags
const (
	RSIPeriod     = 14
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// ObservationFromPrices builds an observation from a closing-price series.
// The latest close becomes the current price; RSI below RSIOversold marks the
// instrument undervalued and above RSIOverbought marks it overvalued.
func ObservationFromPrices(closes []float64, sentiment float64) (domain.Observation, error) {
	rsi := formulas.CalculateRSI(closes, RSIPeriod)
	if rsi == nil {
		return domain.Observation{}, fmt.Errorf("need at least %d closes to derive valuation, got %d", RSIPeriod+1, len(closes))
	}

	return domain.Observation{
		CurrentPrice:  closes[len(closes)-1],
		Sentiment:     sentiment,
		IsUndervalued: *rsi < RSIOversold,
		IsOvervalued:  *rsi > RSIOverbought,
	}, nil
}
