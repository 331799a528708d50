package sim

import (
	"math"

	"market-replay/internal/models"
	"market-replay/internal/pricing"
)

// volEpsilon guards the Sharpe ratio against a flat or degenerate series.
const volEpsilon = 1e-9

// ComputeAnalytics computes closed-form performance statistics from a
// completed snapshot history and a benchmark value series of equal length.
// An empty or one-entry history yields a zeroed result with beta 1 rather
// than an error.
func ComputeAnalytics(history []models.PortfolioSnapshot, benchmark []float64, riskFreeRate float64) models.SimulationAnalytics {
	if len(history) < 2 {
		out := models.SimulationAnalytics{Beta: 1}
		if len(history) == 1 {
			out.StartingValue = history[0].TotalValue
			out.FinalValue = history[0].TotalValue
		}
		return out
	}

	values := make([]float64, len(history))
	for i, s := range history {
		values[i] = s.TotalValue
	}

	returns := dailyReturns(values)
	if len(benchmark) < 2 {
		benchmark = values
	}
	benchReturns := dailyReturns(benchmark)

	first, last := history[0], history[len(history)-1]

	out := models.SimulationAnalytics{
		StartingValue:        first.TotalValue,
		FinalValue:           last.TotalValue,
		AnnualizedVolatility: annualizedVolatility(returns),
		MaxDrawdownPct:       MaxDrawdown(values) * 100,
		Beta:                 Beta(returns, benchReturns),
	}
	if first.TotalValue != 0 {
		out.TotalReturnPct = (last.TotalValue - first.TotalValue) / first.TotalValue
	}
	out.SharpeRatio = sharpeRatio(returns, riskFreeRate)

	best, worst := 0, 0
	for i, r := range returns {
		if r > returns[best] {
			best = i
		}
		if r < returns[worst] {
			worst = i
		}
	}
	out.BestDayReturn = returns[best] * 100
	out.BestDayDate = history[best+1].Date
	out.WorstDayReturn = returns[worst] * 100
	out.WorstDayDate = history[worst+1].Date

	return out
}

// AnalyzeState is the convenience wrapper for a finished run: it derives
// the benchmark value series from the price map and fills in the trade and
// rule counters.
func AnalyzeState(state models.SimulationState, priceData models.PriceDataMap) models.SimulationAnalytics {
	var benchmark []float64
	if series := BenchmarkSeries(priceData); series != nil {
		n := len(state.History)
		if n > len(series) {
			n = len(series)
		}
		for _, bar := range series[:n] {
			benchmark = append(benchmark, bar.Close)
		}
	}

	out := ComputeAnalytics(state.History, benchmark, state.Config.Scenario.RiskFreeRate)
	out.TotalRulesFired = len(state.RulesLog)
	out.TotalManualTrades = state.ManualTradeCount
	return out
}

// dailyReturns computes pairwise (curr-prev)/prev, 0 when prev is 0.
func dailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return out
}

// annualizedVolatility is the sample standard deviation of daily returns
// scaled by √252.
func annualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := meanOf(returns)
	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance * pricing.TradingDaysPerYear)
}

func sharpeRatio(returns []float64, riskFreeRate float64) float64 {
	vol := annualizedVolatility(returns)
	if vol < volEpsilon {
		return 0
	}
	annualizedReturn := meanOf(returns) * pricing.TradingDaysPerYear
	return (annualizedReturn - riskFreeRate) / vol
}

// MaxDrawdown is the minimum over time of (value-peak)/peak: non-positive
// by construction, 0 for a monotonically non-decreasing series.
func MaxDrawdown(values []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (v - peak) / peak; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Beta is cov(portfolio, benchmark)/var(benchmark), defined as 1 when
// fewer than 2 paired observations exist or benchmark variance is 0.
func Beta(portfolioReturns, benchmarkReturns []float64) float64 {
	n := len(portfolioReturns)
	if len(benchmarkReturns) < n {
		n = len(benchmarkReturns)
	}
	if n < 2 {
		return 1
	}

	meanP := meanOf(portfolioReturns[:n])
	meanB := meanOf(benchmarkReturns[:n])

	var cov, varB float64
	for i := 0; i < n; i++ {
		cov += (portfolioReturns[i] - meanP) * (benchmarkReturns[i] - meanB)
		varB += (benchmarkReturns[i] - meanB) * (benchmarkReturns[i] - meanB)
	}
	if varB == 0 {
		return 1
	}
	return cov / varB
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
