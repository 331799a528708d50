package config

import (
	"os"
	"path/filepath"
	"testing"

	"market-replay/internal/models"
)

func validConfig() *Config {
	return &Config{
		Run: RunConfig{
			StartingCapital: 10000,
			Scenario:        "covid-crash",
			Allocations: []models.Allocation{
				{Ticker: "AAPL", Pct: 60},
				{Ticker: "SPY", Pct: 40},
			},
			Rules: []models.Rule{{
				Label:   "Stop loss",
				Enabled: true,
				Conditions: []models.RuleCondition{
					{Subject: models.SubjectPortfolioChangePct, Operator: models.OpLT, Value: -5},
				},
				Action: models.RuleAction{Kind: models.RuleMoveToCash},
			}},
		},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Run.StartingCapital != 10000 {
		t.Errorf("starting capital = %v, want default 10000", cfg.Run.StartingCapital)
	}
	if cfg.Run.Scenario != "2008-crisis" {
		t.Errorf("scenario = %q, want default 2008-crisis", cfg.Run.Scenario)
	}
	if cfg.Projection.Days != 0 {
		t.Errorf("projection days = %d, want 0", cfg.Projection.Days)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
run:
  starting_capital: 50000
  scenario: covid-crash
  allocations:
    - ticker: AAPL
      pct: 70
projection:
  days: 30
  seed: 7
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Run.StartingCapital != 50000 {
		t.Errorf("starting capital = %v, want 50000", cfg.Run.StartingCapital)
	}
	if len(cfg.Run.Allocations) != 1 || cfg.Run.Allocations[0].Ticker != "AAPL" || cfg.Run.Allocations[0].Pct != 70 {
		t.Errorf("allocations wrong: %+v", cfg.Run.Allocations)
	}
	if cfg.Projection.Days != 30 || cfg.Projection.Seed != 7 {
		t.Errorf("projection wrong: %+v", cfg.Projection)
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Run.StartingCapital = 0 }},
		{"negative capital", func(c *Config) { c.Run.StartingCapital = -500 }},
		{"blank allocation ticker", func(c *Config) { c.Run.Allocations[0].Ticker = "" }},
		{"allocation over 100", func(c *Config) { c.Run.Allocations[0].Pct = 150 }},
		{"allocations sum over 100", func(c *Config) {
			c.Run.Allocations = []models.Allocation{{Ticker: "AAPL", Pct: 80}, {Ticker: "SPY", Pct: 80}}
		}},
		{"too many conditions", func(c *Config) {
			cond := models.RuleCondition{Subject: models.SubjectCashBalance, Operator: models.OpGT, Value: 1}
			c.Run.Rules[0].Conditions = []models.RuleCondition{cond, cond, cond, cond}
		}},
		{"unknown subject", func(c *Config) {
			c.Run.Rules[0].Conditions[0].Subject = "astrology"
		}},
		{"per-position subject without ticker", func(c *Config) {
			c.Run.Rules[0].Conditions[0] = models.RuleCondition{
				Subject: models.SubjectPositionWeightPct, Operator: models.OpGT, Value: 50,
			}
		}},
		{"unknown operator", func(c *Config) {
			c.Run.Rules[0].Conditions[0].Operator = "spaceship"
		}},
		{"action missing ticker", func(c *Config) {
			c.Run.Rules[0].Action = models.RuleAction{Kind: models.RuleSellAll}
		}},
		{"unknown action", func(c *Config) {
			c.Run.Rules[0].Action = models.RuleAction{Kind: "yolo"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestSimulationConfigAssembly(t *testing.T) {
	cfg := validConfig()
	scn := models.Scenario{Slug: "covid-crash", RiskFreeRate: 0.005}

	sim := cfg.SimulationConfig(scn)
	if sim.StartingCapital != 10000 {
		t.Errorf("starting capital = %v", sim.StartingCapital)
	}
	if sim.Scenario.Slug != "covid-crash" || sim.Scenario.RiskFreeRate != 0.005 {
		t.Errorf("scenario not threaded: %+v", sim.Scenario)
	}
	if len(sim.Allocations) != 2 || len(sim.Rules) != 1 {
		t.Errorf("allocations/rules not threaded: %+v", sim)
	}
}
