// Package portfolio holds the persona's holdings and their on-disk snapshot.
package portfolio

import (
	"fmt"
	"sort"

	"github.com/aristath/persona/internal/domain"
	"github.com/rs/zerolog"
)

// Store maps instrument symbols to holdings.
// Invariant: every stored holding has a quantity above domain.QuantityEpsilon.
// It is owned by a single agent and is not safe for concurrent use.
type Store struct {
	holdings map[string]domain.Holding
	log      zerolog.Logger
}

// NewStore creates an empty portfolio store
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		holdings: make(map[string]domain.Holding),
		log:      log.With().Str("store", "portfolio").Logger(),
	}
}

// Get returns the holding for symbol
func (s *Store) Get(symbol string) (domain.Holding, bool) {
	h, ok := s.holdings[symbol]
	return h, ok
}

// Has reports whether symbol is held
func (s *Store) Has(symbol string) bool {
	_, ok := s.holdings[symbol]
	return ok
}

// Put inserts or replaces a holding. A holding whose quantity is zero
// (within epsilon) or negative is removed instead of stored.
func (s *Store) Put(h domain.Holding) {
	if h.IsEmpty() || h.Quantity < 0 {
		delete(s.holdings, h.Symbol)
		return
	}
	s.holdings[h.Symbol] = h
}

// Delete removes symbol from the store
func (s *Store) Delete(symbol string) {
	delete(s.holdings, symbol)
}

// Len returns the number of holdings
func (s *Store) Len() int {
	return len(s.holdings)
}

// Symbols returns held symbols in lexicographic order
func (s *Store) Symbols() []string {
	symbols := make([]string, 0, len(s.holdings))
	for symbol := range s.holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// List returns the holdings ordered by symbol
func (s *Store) List() []domain.Holding {
	list := make([]domain.Holding, 0, len(s.holdings))
	for _, symbol := range s.Symbols() {
		list = append(list, s.holdings[symbol])
	}
	return list
}

// Holdings returns a copy of the store contents keyed by symbol
func (s *Store) Holdings() map[string]domain.Holding {
	out := make(map[string]domain.Holding, len(s.holdings))
	for symbol, h := range s.holdings {
		out[symbol] = h
	}
	return out
}

// Replace swaps the store contents for holdings, enforcing the quantity invariant
func (s *Store) Replace(holdings map[string]domain.Holding) {
	s.holdings = make(map[string]domain.Holding, len(holdings))
	for symbol, h := range holdings {
		h.Symbol = symbol
		if h.IsEmpty() || h.Quantity < 0 {
			s.log.Warn().Str("symbol", symbol).Float64("quantity", h.Quantity).Msg("Dropping holding with non-positive quantity")
			continue
		}
		s.holdings[symbol] = h
	}
}

// SetTarget sets the desired allocation and rebalance flag of a holding
func (s *Store) SetTarget(symbol string, desired float64, shouldRebalance bool) error {
	h, ok := s.holdings[symbol]
	if !ok {
		return fmt.Errorf("cannot set target for %s: %w", symbol, domain.ErrUnknownSymbol)
	}
	if desired < 0 || desired > 1 {
		return fmt.Errorf("desired allocation %.4f for %s outside [0,1]", desired, symbol)
	}
	h.DesiredAllocation = desired
	h.ShouldRebalance = shouldRebalance
	s.holdings[symbol] = h
	return nil
}

// SetRiskScore sets the risk score of a holding
func (s *Store) SetRiskScore(symbol string, score float64) error {
	h, ok := s.holdings[symbol]
	if !ok {
		return fmt.Errorf("cannot set risk score for %s: %w", symbol, domain.ErrUnknownSymbol)
	}
	h.RiskScore = score
	s.holdings[symbol] = h
	return nil
}

// UpdatePrices refreshes current prices from prices for every held symbol
// that has a known price. Returns the number of holdings updated.
func (s *Store) UpdatePrices(prices domain.PriceSource) int {
	updated := 0
	for symbol, h := range s.holdings {
		price, ok := prices.Price(symbol)
		if !ok || price == h.CurrentPrice {
			continue
		}
		h.CurrentPrice = price
		s.holdings[symbol] = h
		updated++
	}
	return updated
}
