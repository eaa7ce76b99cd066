// Package market holds the persona's market knowledge: the latest
// observation per instrument and the hook through which research updates it.
package market

import (
	"sort"

	"github.com/aristath/persona/internal/domain"
	"github.com/rs/zerolog"
)

// seedObservations is the baseline knowledge a fresh persona starts with
var seedObservations = map[string]domain.Observation{
	"StockA": {CurrentPrice: 100, Sentiment: 0.6, IsUndervalued: true},
	"StockB": {CurrentPrice: 150, Sentiment: 0.4, IsUndervalued: false},
}

// KnowledgeStore maps instrument symbols to observations.
// It is owned by a single agent and is not safe for concurrent use.
type KnowledgeStore struct {
	observations map[string]domain.Observation
	log          zerolog.Logger
}

// NewKnowledgeStore creates an empty knowledge store
func NewKnowledgeStore(log zerolog.Logger) *KnowledgeStore {
	return &KnowledgeStore{
		observations: make(map[string]domain.Observation),
		log:          log.With().Str("store", "market_knowledge").Logger(),
	}
}

// Initialize replaces the store contents with the seed observations
func (s *KnowledgeStore) Initialize() {
	s.observations = make(map[string]domain.Observation, len(seedObservations))
	for symbol, obs := range seedObservations {
		s.observations[symbol] = obs
	}
	s.log.Debug().Int("symbols", len(s.observations)).Msg("Market knowledge initialized")
}

// Refresh merges update into the store. Symbols in update overwrite existing
// entries wholesale; symbols absent from update are left untouched.
// Entries are not validated. Returns the number of merged symbols.
func (s *KnowledgeStore) Refresh(update map[string]domain.Observation) int {
	for symbol, obs := range update {
		s.observations[symbol] = obs
	}
	if len(update) > 0 {
		s.log.Debug().Int("merged", len(update)).Int("total", len(s.observations)).Msg("Market knowledge refreshed")
	}
	return len(update)
}

// Get returns the observation for symbol
func (s *KnowledgeStore) Get(symbol string) (domain.Observation, bool) {
	obs, ok := s.observations[symbol]
	return obs, ok
}

// Price returns the observed price for symbol.
// A non-positive price is reported as unknown.
func (s *KnowledgeStore) Price(symbol string) (float64, bool) {
	obs, ok := s.observations[symbol]
	if !ok || obs.CurrentPrice <= 0 {
		return 0, false
	}
	return obs.CurrentPrice, true
}

// Symbols returns all known symbols in lexicographic order
func (s *KnowledgeStore) Symbols() []string {
	symbols := make([]string, 0, len(s.observations))
	for symbol := range s.observations {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Snapshot returns a copy of the store contents
func (s *KnowledgeStore) Snapshot() map[string]domain.Observation {
	out := make(map[string]domain.Observation, len(s.observations))
	for symbol, obs := range s.observations {
		out[symbol] = obs
	}
	return out
}

// Len returns the number of known symbols
func (s *KnowledgeStore) Len() int {
	return len(s.observations)
}

var _ domain.PriceSource = (*KnowledgeStore)(nil)
