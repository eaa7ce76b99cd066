// Package policy holds the persona's trading predicates. They are pure
// functions of their input and carry no state.
package policy

import "github.com/aristath/persona/internal/domain"

// NeutralSentiment separates bullish from bearish sentiment
const NeutralSentiment = 0.5

// ShouldBuy reports whether sentiment is bullish and the instrument is undervalued
func ShouldBuy(o domain.Observation) bool {
	return o.Sentiment > NeutralSentiment && o.IsUndervalued
}

// ShouldSell reports whether sentiment is bearish or the instrument is overvalued
func ShouldSell(o domain.Observation) bool {
	return o.Sentiment < NeutralSentiment || o.IsOvervalued
}

// ShouldRebalance reports the holding's rebalance flag. When rebalancing is
// due is decided by whoever sets the flag, not by drift thresholds here.
func ShouldRebalance(h domain.Holding) bool {
	return h.ShouldRebalance
}

// Signal is the outcome of evaluating one observation
type Signal string

const (
	SignalNone Signal = "NONE"
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
)

// Decide evaluates ShouldBuy first and ShouldSell only if buying is not
// warranted, so buy wins when both predicates hold for the same observation.
func Decide(o domain.Observation) Signal {
	if ShouldBuy(o) {
		return SignalBuy
	}
	if ShouldSell(o) {
		return SignalSell
	}
	return SignalNone
}
