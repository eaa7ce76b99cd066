package rebalancing

import (
	"time"

	"github.com/aristath/persona/internal/modules/trading"
)

// TradeOutcome is one trade attempted during a manage cycle
type TradeOutcome struct {
	Symbol   string              `json:"symbol"`
	Side     trading.TradeSide   `json:"side"`
	Quantity float64             `json:"quantity"`
	Reason   trading.TradeReason `json:"reason"`
	Trade    *trading.Trade      `json:"trade,omitempty"`
	Err      error               `json:"-"`
	Error    string              `json:"error,omitempty"`
}

// OK reports whether the trade executed
func (o TradeOutcome) OK() bool {
	return o.Err == nil
}

// CycleReport summarises one manage cycle.
// Outcomes are in execution order: rebalance trades first, then signal trades.
type CycleReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Outcomes   []TradeOutcome `json:"outcomes"`
	Rebalanced int            `json:"rebalanced"`
	Signals    int            `json:"signals"`
	Failed     int            `json:"failed"`
}

// Failures returns the outcomes whose trade did not execute
func (r *CycleReport) Failures() []TradeOutcome {
	failures := make([]TradeOutcome, 0, r.Failed)
	for _, o := range r.Outcomes {
		if !o.OK() {
			failures = append(failures, o)
		}
	}
	return failures
}

func (r *CycleReport) add(o TradeOutcome) {
	if o.Err != nil {
		o.Error = o.Err.Error()
		r.Failed++
	} else if o.Reason == trading.ReasonRebalance {
		r.Rebalanced++
	} else {
		r.Signals++
	}
	r.Outcomes = append(r.Outcomes, o)
}
