package pricing

import "math"

// DefaultVolatility is used when the series is too short to estimate from.
const DefaultVolatility = 0.20

// DefaultVolWindow bounds how many trailing log returns feed the estimate.
const DefaultVolWindow = 30

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// HistoricalVolatility estimates annualized volatility from trailing daily
// log returns over a bounded window. Fewer than 2 usable observations
// yields DefaultVolatility.
func HistoricalVolatility(closes []float64, window int) float64 {
	if len(closes) < 2 {
		return DefaultVolatility
	}
	if window <= 0 {
		window = DefaultVolWindow
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) > window {
		returns = returns[len(returns)-window:]
	}
	if len(returns) < 2 {
		return DefaultVolatility
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance * TradingDaysPerYear)
}
