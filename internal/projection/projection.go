// Package projection extends historical price series with synthetic future
// bars via a seeded Monte Carlo random walk. Output feeds the simulation
// engine in the same shape as historical data; bars are flagged projected.
package projection

import (
	"math"
	"time"

	"market-replay/internal/models"
	"market-replay/internal/pricing"
)

// volEstimationWindow bounds the lookback used to parameterize the walk.
const volEstimationWindow = 60

// rng is a small seeded LCG so projections are reproducible from a stored
// seed across runs.
type rng struct {
	state uint32
}

func (r *rng) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / float64(math.MaxUint32)
}

// norm draws a standard normal via the Box-Muller transform.
func (r *rng) norm() float64 {
	u1 := math.Max(r.next(), 1e-10)
	u2 := r.next()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Generate produces numDays of projected bars following the last
// historical point, as a random walk with the given annualized volatility
// and drift. Weekends are skipped.
func Generate(last models.PricePoint, numDays int, annualizedVol, annualizedDrift float64, seed uint32) models.PriceSeries {
	dailyVol := annualizedVol / math.Sqrt(pricing.TradingDaysPerYear)
	dailyDrift := annualizedDrift / pricing.TradingDaysPerYear
	r := &rng{state: seed}

	series := make(models.PriceSeries, 0, numDays)
	prevClose := last.Close

	day, err := time.Parse("2006-01-02", last.Date)
	if err != nil {
		return series
	}
	day = day.AddDate(0, 0, 1)

	for i := 0; i < numDays; i++ {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}

		closePx := prevClose * math.Exp(dailyDrift+dailyVol*r.norm())
		openPx := prevClose * (1 + r.norm()*dailyVol*0.3)
		highPx := math.Max(openPx, closePx) * (1 + math.Abs(r.norm())*dailyVol*0.2)
		lowPx := math.Min(openPx, closePx) * (1 - math.Abs(r.norm())*dailyVol*0.2)

		series = append(series, models.PricePoint{
			Date:      day.Format("2006-01-02"),
			Open:      math.Max(openPx, 0.01),
			High:      math.Max(highPx, 0.01),
			Low:       math.Max(lowPx, 0.01),
			Close:     math.Max(closePx, 0.01),
			Volume:    int64(1_000_000 + r.norm()*500_000),
			Projected: true,
		})

		prevClose = closePx
		day = day.AddDate(0, 0, 1)
	}
	return series
}

// ExtendWithProjections appends numDays of projected bars to every series
// in the map, each parameterized by its own trailing volatility. Called
// once at setup when a scenario extends beyond historical data.
func ExtendWithProjections(priceData models.PriceDataMap, numDays int, seed uint32) models.PriceDataMap {
	extended := make(models.PriceDataMap, len(priceData))
	for ticker, series := range priceData {
		if len(series) == 0 {
			extended[ticker] = series
			continue
		}

		closes := make([]float64, len(series))
		for i, p := range series {
			closes[i] = p.Close
		}
		window := volEstimationWindow
		if window > len(series)-1 {
			window = len(series) - 1
		}
		vol := pricing.HistoricalVolatility(closes, window)

		projected := Generate(series[len(series)-1], numDays, vol, 0, seed)
		merged := make(models.PriceSeries, 0, len(series)+len(projected))
		merged = append(merged, series...)
		merged = append(merged, projected...)
		extended[ticker] = merged
	}
	return extended
}
