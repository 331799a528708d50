// Package config provides configuration management for the replay
// application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "market-replay/internal/errors"
	"market-replay/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Run        RunConfig        `mapstructure:"run"`
	Data       DataConfig       `mapstructure:"data"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Log        LogConfig        `mapstructure:"log"`
}

// RunConfig describes the simulation to run.
type RunConfig struct {
	StartingCapital float64             `mapstructure:"starting_capital"`
	Scenario        string              `mapstructure:"scenario"`
	Allocations     []models.Allocation `mapstructure:"allocations"`
	Rules           []models.Rule       `mapstructure:"rules"`
}

// DataConfig locates the price series on disk.
type DataConfig struct {
	Dir string `mapstructure:"dir"` // directory of <TICKER>.csv files
}

// ProjectionConfig controls Monte Carlo extension of the price series.
type ProjectionConfig struct {
	Days int    `mapstructure:"days"` // 0 disables projection
	Seed uint32 `mapstructure:"seed"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/market-replay"
	}
	return filepath.Join(home, ".config", "market-replay")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine; defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("run.starting_capital", 10000.0)
	v.SetDefault("run.scenario", "2008-crisis")
	v.SetDefault("data.dir", filepath.Join(configDir, "data"))
	v.SetDefault("projection.days", 0)
	v.SetDefault("projection.seed", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Run.StartingCapital <= 0 {
		return apperrors.NewValidationError("run.starting_capital", c.Run.StartingCapital, "must be positive")
	}

	var totalPct float64
	for i, alloc := range c.Run.Allocations {
		if alloc.Ticker == "" {
			return apperrors.NewValidationError(fmt.Sprintf("run.allocations[%d].ticker", i), alloc.Ticker, "is required")
		}
		if alloc.Pct < 0 || alloc.Pct > 100 {
			return apperrors.NewValidationError(fmt.Sprintf("run.allocations[%d].pct", i), alloc.Pct, "must be in [0,100]")
		}
		totalPct += alloc.Pct
	}
	if totalPct > 100.0001 {
		return apperrors.NewValidationError("run.allocations", totalPct, "percentages exceed 100")
	}

	for i, rule := range c.Run.Rules {
		if err := validateRule(i, rule); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(idx int, rule models.Rule) error {
	field := func(name string) string { return fmt.Sprintf("run.rules[%d].%s", idx, name) }

	if len(rule.Conditions) > 3 {
		return apperrors.NewValidationError(field("conditions"), len(rule.Conditions), "at most 3 conditions")
	}
	for j, cond := range rule.Conditions {
		switch cond.Subject {
		case models.SubjectPortfolioValue, models.SubjectCashBalance, models.SubjectDaysElapsed,
			models.SubjectPortfolioChangePct, models.SubjectMarketChangePct:
		case models.SubjectPositionChangePct, models.SubjectPositionWeightPct:
			if cond.Ticker == "" {
				return apperrors.NewValidationError(field(fmt.Sprintf("conditions[%d].ticker", j)), cond.Ticker, "required for per-position subjects")
			}
		default:
			return apperrors.NewValidationError(field(fmt.Sprintf("conditions[%d].subject", j)), cond.Subject, "unknown subject")
		}
		switch cond.Operator {
		case models.OpGT, models.OpLT, models.OpGTE, models.OpLTE:
		default:
			return apperrors.NewValidationError(field(fmt.Sprintf("conditions[%d].operator", j)), cond.Operator, "unknown operator")
		}
	}

	switch rule.Action.Kind {
	case models.RuleBuy, models.RuleSellPct, models.RuleSellAll, models.RuleRebalance:
		if rule.Action.Ticker == "" {
			return apperrors.NewValidationError(field("action.ticker"), rule.Action.Ticker, "required for this action")
		}
	case models.RuleMoveToCash:
	default:
		return apperrors.NewValidationError(field("action.kind"), rule.Action.Kind, "unknown action")
	}
	return nil
}

// SimulationConfig assembles the engine-facing configuration for the
// selected scenario.
func (c *Config) SimulationConfig(scn models.Scenario) models.SimulationConfig {
	return models.SimulationConfig{
		StartingCapital: c.Run.StartingCapital,
		Scenario:        scn,
		Allocations:     c.Run.Allocations,
		Rules:           c.Run.Rules,
	}
}
