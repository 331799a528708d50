package models

// SimulationAnalytics summarizes a completed run.
type SimulationAnalytics struct {
	StartingValue        float64 `json:"starting_value"`
	FinalValue           float64 `json:"final_value"`
	TotalReturnPct       float64 `json:"total_return_pct"` // decimal, 1.0 = +100%
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"` // negative percentage points
	Beta                 float64 `json:"beta"`
	BestDayReturn        float64 `json:"best_day_return"` // percentage points
	BestDayDate          string  `json:"best_day_date"`
	WorstDayReturn       float64 `json:"worst_day_return"` // percentage points
	WorstDayDate         string  `json:"worst_day_date"`
	TotalRulesFired      int     `json:"total_rules_fired"`
	TotalManualTrades    int     `json:"total_manual_trades"`
}
