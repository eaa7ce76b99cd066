// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Snapshot and ledger directory (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	// Persona
	PersonaName        string
	PersonaRole        string
	RiskTolerance      float64
	CashReserves       float64
	SignalBuyFraction  float64
	SignalSellFraction float64
	SnapshotFormat     string // "json" or "msgpack"

	// Jobs
	ManageSchedule   string
	ResearchSchedule string
	MarketFeedURL    string // Empty disables scheduled research

	LedgerEnabled bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PERSONA_DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnvAsInt("GO_PORT", 8001),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		PersonaName:        getEnv("PERSONA_NAME", "persona"),
		PersonaRole:        getEnv("PERSONA_ROLE", "investor"),
		RiskTolerance:      getEnvAsFloat("RISK_TOLERANCE", 0.5),
		CashReserves:       getEnvAsFloat("CASH_RESERVES", 100000),
		SignalBuyFraction:  getEnvAsFloat("SIGNAL_BUY_FRACTION", 0.1),
		SignalSellFraction: getEnvAsFloat("SIGNAL_SELL_FRACTION", 1.0),
		SnapshotFormat:     getEnv("SNAPSHOT_FORMAT", "json"),
		ManageSchedule:     getEnv("MANAGE_SCHEDULE", "@every 1h"),
		ResearchSchedule:   getEnv("RESEARCH_SCHEDULE", "@every 15m"),
		MarketFeedURL:      getEnv("MARKET_FEED_URL", ""),
		LedgerEnabled:      getEnvAsBool("LEDGER_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that values are within their allowed ranges
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT %d out of range", c.Port)
	}
	if c.RiskTolerance < 0 || c.RiskTolerance > 1 {
		return fmt.Errorf("RISK_TOLERANCE must be in [0,1], got %v", c.RiskTolerance)
	}
	if c.CashReserves < 0 {
		return fmt.Errorf("CASH_RESERVES cannot be negative, got %v", c.CashReserves)
	}
	if c.SignalBuyFraction < 0 || c.SignalBuyFraction > 1 {
		return fmt.Errorf("SIGNAL_BUY_FRACTION must be in [0,1], got %v", c.SignalBuyFraction)
	}
	if c.SignalSellFraction <= 0 || c.SignalSellFraction > 1 {
		return fmt.Errorf("SIGNAL_SELL_FRACTION must be in (0,1], got %v", c.SignalSellFraction)
	}
	if c.SnapshotFormat != "json" && c.SnapshotFormat != "msgpack" {
		return fmt.Errorf("SNAPSHOT_FORMAT must be json or msgpack, got %q", c.SnapshotFormat)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
