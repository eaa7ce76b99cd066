// Package persona assembles the persona's stores and services into one agent
// that owns its portfolio and market knowledge.
package persona

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/events"
	"github.com/aristath/persona/internal/modules/allocation"
	"github.com/aristath/persona/internal/modules/cash_flows"
	"github.com/aristath/persona/internal/modules/evaluation"
	"github.com/aristath/persona/internal/modules/market"
	"github.com/aristath/persona/internal/modules/portfolio"
	"github.com/aristath/persona/internal/modules/rebalancing"
	"github.com/aristath/persona/internal/modules/trading"
	"github.com/rs/zerolog"
)

// Config holds the agent's identity and trading parameters
type Config struct {
	Name           string
	Role           string
	RiskTolerance  float64
	CashReserves   float64
	Sizing         rebalancing.SizingConfig
	SnapshotFormat portfolio.SnapshotFormat
}

// DefaultConfig returns the configuration of a new persona
func DefaultConfig() Config {
	return Config{
		Name:           "persona",
		Role:           "investor",
		RiskTolerance:  rebalancing.DefaultRiskTolerance,
		CashReserves:   cash_flows.DefaultCashReserves,
		Sizing:         rebalancing.DefaultSizingConfig(),
		SnapshotFormat: portfolio.FormatJSON,
	}
}

// Agent is the persona aggregate. It exclusively owns its knowledge store,
// portfolio store and cash account; accessors return copies.
//
// All public methods are serialised by one mutex so the HTTP API and
// scheduled jobs can share an agent.
type Agent struct {
	mu sync.Mutex

	name           string
	role           string
	snapshotFormat portfolio.SnapshotFormat

	knowledge  *market.KnowledgeStore
	holdings   *portfolio.Store
	cash       *cash_flows.Account
	calculator *allocation.Calculator
	executor   *trading.Executor
	evaluator  *evaluation.Evaluator
	manager    *rebalancing.Manager

	eventManager *events.Manager
	log          zerolog.Logger
}

// New creates an agent. recorder and eventManager are optional.
// Call Initialize before use.
func New(cfg Config, recorder trading.TradeRecorder, eventManager *events.Manager, log zerolog.Logger) *Agent {
	log = log.With().Str("persona", cfg.Name).Logger()

	knowledge := market.NewKnowledgeStore(log)
	holdings := portfolio.NewStore(log)
	cash := cash_flows.NewAccount(cfg.CashReserves, log)
	calculator := allocation.NewCalculator(holdings)
	executor := trading.NewExecutor(holdings, knowledge, cash, recorder, eventManager, log)

	sizing := cfg.Sizing
	sizing.RiskTolerance = cfg.RiskTolerance

	return &Agent{
		name:           cfg.Name,
		role:           cfg.Role,
		snapshotFormat: cfg.SnapshotFormat,
		knowledge:      knowledge,
		holdings:       holdings,
		cash:           cash,
		calculator:     calculator,
		executor:       executor,
		evaluator:      evaluation.NewEvaluator(holdings, cash),
		manager:        rebalancing.NewManager(knowledge, holdings, calculator, executor, cash, sizing, eventManager, log),
		eventManager:   eventManager,
		log:            log.With().Str("service", "persona").Logger(),
	}
}

// Initialize seeds market knowledge and loads the portfolio snapshot from
// loadPath. An empty loadPath starts with no holdings.
//
// Loaded holdings are repriced from market knowledge. A snapshot that cannot
// be read is not fatal: the agent starts with an empty portfolio, logs the
// failure and returns it as a diagnostic.
func (a *Agent) Initialize(loadPath string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.knowledge.Initialize()

	err := a.holdings.Load(loadPath)
	a.eventManager.Emit("persona", &events.PortfolioLoadedData{
		Path:     loadPath,
		Holdings: a.holdings.Len(),
		Fallback: err != nil,
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("Saved investments not available, starting with an empty portfolio")
		return err
	}

	// Saved prices are stale; mark holdings to the seeded knowledge
	repriced := a.holdings.UpdatePrices(a.knowledge)

	a.log.Info().
		Str("role", a.role).
		Int("holdings", a.holdings.Len()).
		Int("repriced", repriced).
		Int("observations", a.knowledge.Len()).
		Msg("Persona initialized")
	return nil
}

// Name returns the persona's name
func (a *Agent) Name() string {
	return a.name
}

// Role returns the persona's role
func (a *Agent) Role() string {
	return a.role
}

// RiskTolerance returns the tolerance used to size signal buys
func (a *Agent) RiskTolerance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.Sizing().RiskTolerance
}

// SetRiskTolerance changes the tolerance used to size signal buys
func (a *Agent) SetRiskTolerance(tolerance float64) error {
	if tolerance < 0 || tolerance > 1 {
		return fmt.Errorf("risk tolerance %.4f outside [0,1]", tolerance)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.manager.SetRiskTolerance(tolerance)
	return nil
}

// ConductMarketResearch merges the researcher's observations into market
// knowledge and refreshes current prices of held symbols. A research error
// leaves knowledge untouched. Returns the number of merged observations.
func (a *Agent) ConductMarketResearch(ctx context.Context, researcher market.Researcher) (int, error) {
	// Research may block on I/O; only the merge runs under the lock
	update, err := researcher.Research(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to conduct market research: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	merged := a.knowledge.Refresh(update)
	repriced := a.holdings.UpdatePrices(a.knowledge)

	a.eventManager.Emit("market", &events.KnowledgeRefreshedData{
		Merged: merged,
		Total:  a.knowledge.Len(),
	})
	a.log.Debug().Int("merged", merged).Int("repriced", repriced).Msg("Market knowledge refreshed")
	return merged, nil
}

// ManageCycle runs one rebalance-and-signal cycle
func (a *Agent) ManageCycle(ctx context.Context) (*rebalancing.CycleReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.ManageCycle(ctx)
}

// Buy executes a manual buy
func (a *Agent) Buy(symbol string, quantity float64) (*trading.Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.executor.Buy(domain.NormalizeSymbol(symbol), quantity, trading.ReasonManual)
}

// Sell executes a manual sell
func (a *Agent) Sell(symbol string, quantity float64) (*trading.Trade, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.executor.Sell(domain.NormalizeSymbol(symbol), quantity, trading.ReasonManual)
}

// Holdings returns the current holdings ordered by symbol
func (a *Agent) Holdings() []domain.Holding {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings.List()
}

// Holding returns one holding
func (a *Agent) Holding(symbol string) (domain.Holding, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings.Get(domain.NormalizeSymbol(symbol))
}

// Knowledge returns a copy of the market knowledge
func (a *Agent) Knowledge() map[string]domain.Observation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.knowledge.Snapshot()
}

// CurrentAllocation returns symbol's share of total portfolio value
func (a *Agent) CurrentAllocation(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calculator.CurrentAllocation(domain.NormalizeSymbol(symbol))
}

// Allocations returns every holding's allocation ordered by symbol
func (a *Agent) Allocations() []allocation.HoldingAllocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calculator.Allocations()
}

// SetTarget sets a holding's desired allocation and rebalance flag
func (a *Agent) SetTarget(symbol string, desired float64, shouldRebalance bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings.SetTarget(domain.NormalizeSymbol(symbol), desired, shouldRebalance)
}

// SetRiskScore sets a holding's risk score
func (a *Agent) SetRiskScore(symbol string, score float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings.SetRiskScore(domain.NormalizeSymbol(symbol), score)
}

// EvaluatePerformance returns the mean simple return, nil when not applicable
func (a *Agent) EvaluatePerformance() *float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evaluator.EvaluatePerformance()
}

// AssessRisk returns the mean risk score, nil when not applicable
func (a *Agent) AssessRisk() *float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evaluator.AssessRisk()
}

// Summary returns every evaluation metric
func (a *Agent) Summary() evaluation.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evaluator.Summary()
}

// TransactionHistory returns the trades executed by this agent
func (a *Agent) TransactionHistory() []trading.Trade {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.executor.History()
}

// CashReserves returns the cash balance
func (a *Agent) CashReserves() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash.Balance()
}

// SaveSnapshot writes the holdings to dir in the configured format.
// Nothing in the agent persists holdings on its own.
func (a *Agent) SaveSnapshot(dir string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings.Save(dir, a.snapshotFormat)
}
