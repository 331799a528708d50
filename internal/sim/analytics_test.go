package sim

import (
	"math"
	"testing"

	"market-replay/internal/models"
)

func snapshotsFrom(values ...float64) []models.PortfolioSnapshot {
	out := make([]models.PortfolioSnapshot, len(values))
	dates := flatSeries("2020-01-01", values...)
	for i, v := range values {
		out[i] = models.PortfolioSnapshot{Date: dates[i].Date, TotalValue: v}
	}
	return out
}

func TestMaxDrawdown(t *testing.T) {
	cases := []struct {
		values []float64
		want   float64
	}{
		{[]float64{100, 150, 200, 150, 100}, -0.5},
		{[]float64{100, 110, 120}, 0},
		{[]float64{100, 50, 200, 100}, -0.5},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := MaxDrawdown(tc.values); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("MaxDrawdown(%v) = %v, want %v", tc.values, got, tc.want)
		}
	}
}

func TestBetaAgainstItselfIsOne(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, 0.005, -0.01}
	if got := Beta(returns, returns); math.Abs(got-1) > 1e-9 {
		t.Errorf("beta of a series against itself = %v, want 1", got)
	}
}

func TestBetaDegenerateCases(t *testing.T) {
	if got := Beta([]float64{0.01}, []float64{0.02}); got != 1 {
		t.Errorf("single observation: got %v, want 1", got)
	}
	if got := Beta([]float64{0.01, 0.02, 0.03}, []float64{0.01, 0.01, 0.01}); got != 1 {
		t.Errorf("flat benchmark: got %v, want 1", got)
	}
}

func TestBetaLeveredSeries(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, 0.005}
	levered := make([]float64, len(bench))
	for i, r := range bench {
		levered[i] = 2 * r
	}
	if got := Beta(levered, bench); math.Abs(got-2) > 1e-9 {
		t.Errorf("2x levered series beta = %v, want 2", got)
	}
}

func TestComputeAnalyticsShortHistory(t *testing.T) {
	empty := ComputeAnalytics(nil, nil, 0.02)
	if empty.Beta != 1 || empty.TotalReturnPct != 0 || empty.FinalValue != 0 {
		t.Errorf("empty history should zero out with beta 1, got %+v", empty)
	}

	one := ComputeAnalytics(snapshotsFrom(10000), nil, 0.02)
	if one.StartingValue != 10000 || one.FinalValue != 10000 || one.Beta != 1 {
		t.Errorf("single snapshot: got %+v", one)
	}
}

func TestComputeAnalyticsDoubling(t *testing.T) {
	history := snapshotsFrom(10000, 12000, 15000, 20000)
	got := ComputeAnalytics(history, nil, 0.02)

	if math.Abs(got.TotalReturnPct-1.0) > 1e-9 {
		t.Errorf("total return = %v, want 1.0", got.TotalReturnPct)
	}
	if got.StartingValue != 10000 || got.FinalValue != 20000 {
		t.Errorf("endpoints wrong: %+v", got)
	}
	if got.MaxDrawdownPct != 0 {
		t.Errorf("monotone series drawdown = %v, want 0", got.MaxDrawdownPct)
	}
	// With no benchmark the series is its own reference.
	if math.Abs(got.Beta-1) > 1e-9 {
		t.Errorf("self-benchmark beta = %v, want 1", got.Beta)
	}
}

func TestComputeAnalyticsBestWorstDay(t *testing.T) {
	// Daily returns: +10%, -10%, +21.2%.
	history := snapshotsFrom(100, 110, 99, 120)
	got := ComputeAnalytics(history, nil, 0)

	if got.BestDayDate != history[3].Date {
		t.Errorf("best day = %s, want %s", got.BestDayDate, history[3].Date)
	}
	if math.Abs(got.BestDayReturn-(120.0-99)/99*100) > 1e-9 {
		t.Errorf("best day return = %v", got.BestDayReturn)
	}
	if got.WorstDayDate != history[2].Date {
		t.Errorf("worst day = %s, want %s", got.WorstDayDate, history[2].Date)
	}
	if math.Abs(got.WorstDayReturn-(-10)) > 1e-9 {
		t.Errorf("worst day return = %v, want -10", got.WorstDayReturn)
	}
}

func TestComputeAnalyticsFlatSeries(t *testing.T) {
	history := snapshotsFrom(10000, 10000, 10000, 10000)
	got := ComputeAnalytics(history, nil, 0.02)

	if got.AnnualizedVolatility != 0 {
		t.Errorf("flat series vol = %v, want 0", got.AnnualizedVolatility)
	}
	if got.SharpeRatio != 0 {
		t.Errorf("flat series sharpe = %v, want 0 (undefined)", got.SharpeRatio)
	}
}

func TestAnalyzeStateFillsCounters(t *testing.T) {
	cfg, data := doublingConfig()
	cfg.Rules = []models.Rule{{
		ID:      "dca",
		Label:   "Dollar cost average",
		Enabled: true,
		Conditions: []models.RuleCondition{
			{Subject: models.SubjectDaysElapsed, Operator: models.OpGTE, Value: 0},
		},
		Action:        models.RuleAction{Kind: models.RuleBuy, Ticker: "AAPL", Amount: 100},
		CooldownTicks: 100, // fires once
	}}

	state := runToEnd(NewSimulation(cfg), data)
	got := AnalyzeState(state, data)

	if got.TotalRulesFired != len(state.RulesLog) || got.TotalRulesFired != 1 {
		t.Errorf("rules fired = %d, want 1", got.TotalRulesFired)
	}
	if got.TotalManualTrades != 0 {
		t.Errorf("manual trades = %d, want 0 (allocation fill is not a user trade)", got.TotalManualTrades)
	}
	if got.FinalValue != state.Portfolio.TotalValue {
		t.Errorf("final value = %v, want %v", got.FinalValue, state.Portfolio.TotalValue)
	}
}
