package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/persona/internal/modules/market"
	"github.com/aristath/persona/internal/modules/rebalancing"
	"github.com/rs/zerolog"
)

// Default job timeouts
const (
	DefaultCycleTimeout    = 5 * time.Minute
	DefaultResearchTimeout = 2 * time.Minute
	DefaultCheckTimeout    = 30 * time.Second
)

// CycleRunner runs one manage cycle
type CycleRunner interface {
	ManageCycle(ctx context.Context) (*rebalancing.CycleReport, error)
}

// ResearchConductor merges research results into market knowledge
type ResearchConductor interface {
	ConductMarketResearch(ctx context.Context, researcher market.Researcher) (int, error)
}

// HealthChecker verifies a storage backend
type HealthChecker interface {
	Name() string
	QuickCheck(ctx context.Context) error
}

// ManageCycleJob runs the persona's manage cycle
type ManageCycleJob struct {
	runner  CycleRunner
	timeout time.Duration
	log     zerolog.Logger
}

// NewManageCycleJob creates a new manage cycle job
func NewManageCycleJob(runner CycleRunner, timeout time.Duration, log zerolog.Logger) *ManageCycleJob {
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	return &ManageCycleJob{
		runner:  runner,
		timeout: timeout,
		log:     log.With().Str("job", "manage_cycle").Logger(),
	}
}

// Name returns the job name
func (j *ManageCycleJob) Name() string {
	return "manage_cycle"
}

// Run executes one cycle. Individual trade failures are reported in the
// cycle report and do not fail the job.
func (j *ManageCycleJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.runner.ManageCycle(ctx)
	if err != nil {
		return fmt.Errorf("manage cycle interrupted: %w", err)
	}

	for _, failure := range report.Failures() {
		j.log.Warn().
			Str("symbol", failure.Symbol).
			Str("side", string(failure.Side)).
			Str("reason", string(failure.Reason)).
			Str("error", failure.Error).
			Msg("Cycle trade failed")
	}
	return nil
}

// ResearchJob refreshes market knowledge from a researcher
type ResearchJob struct {
	conductor  ResearchConductor
	researcher market.Researcher
	timeout    time.Duration
	log        zerolog.Logger
}

// NewResearchJob creates a new research job
func NewResearchJob(conductor ResearchConductor, researcher market.Researcher, timeout time.Duration, log zerolog.Logger) *ResearchJob {
	if timeout <= 0 {
		timeout = DefaultResearchTimeout
	}
	return &ResearchJob{
		conductor:  conductor,
		researcher: researcher,
		timeout:    timeout,
		log:        log.With().Str("job", "market_research").Logger(),
	}
}

// Name returns the job name
func (j *ResearchJob) Name() string {
	return "market_research"
}

// Run executes one research pass
func (j *ResearchJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	merged, err := j.conductor.ConductMarketResearch(ctx, j.researcher)
	if err != nil {
		return err
	}
	j.log.Info().Int("merged", merged).Msg("Market research completed")
	return nil
}

// HealthCheckJob runs an integrity check against a database
type HealthCheckJob struct {
	db  HealthChecker
	log zerolog.Logger
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(db HealthChecker, log zerolog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		db:  db,
		log: log.With().Str("job", "health_check").Logger(),
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the integrity check
func (j *HealthCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultCheckTimeout)
	defer cancel()

	if err := j.db.QuickCheck(ctx); err != nil {
		return fmt.Errorf("%s integrity check failed: %w", j.db.Name(), err)
	}
	j.log.Debug().Str("database", j.db.Name()).Msg("Integrity check passed")
	return nil
}
