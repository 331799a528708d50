// Package sim implements the deterministic replay engine: trade execution,
// rule evaluation, option lifecycle, the per-tick orchestration loop and
// post-hoc analytics. Every exported function is a pure transform over its
// inputs; callers thread state from one call to the next.
package sim

import (
	"sort"

	"market-replay/internal/models"
)

// PrimaryTicker returns the ticker whose series drives the date cursor: the
// longest series, ties broken by ticker order so iteration stays
// deterministic.
func PrimaryTicker(priceData models.PriceDataMap) string {
	tickers := sortedTickers(priceData)
	best := ""
	bestLen := -1
	for _, t := range tickers {
		if l := len(priceData[t]); l > bestLen {
			best, bestLen = t, l
		}
	}
	return best
}

// BenchmarkSeries returns the reference series for market-wide conditions:
// the benchmark ticker when present, else the first series in ticker order.
func BenchmarkSeries(priceData models.PriceDataMap) models.PriceSeries {
	if s, ok := priceData[models.BenchmarkTicker]; ok && len(s) > 0 {
		return s
	}
	for _, t := range sortedTickers(priceData) {
		if len(priceData[t]) > 0 {
			return priceData[t]
		}
	}
	return nil
}

func sortedTickers(priceData models.PriceDataMap) []string {
	tickers := make([]string, 0, len(priceData))
	for t := range priceData {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// dateIndex returns the index of date in the series, or -1. ISO dates sort
// lexicographically, so a binary search suffices.
func dateIndex(series models.PriceSeries, date string) int {
	i := sort.Search(len(series), func(i int) bool { return series[i].Date >= date })
	if i < len(series) && series[i].Date == date {
		return i
	}
	return -1
}

// barAt returns the bar for date, or the nearest prior bar when the exact
// date is absent from the series.
func barAt(series models.PriceSeries, date string) (models.PricePoint, bool) {
	i := sort.Search(len(series), func(i int) bool { return series[i].Date > date })
	if i == 0 {
		return models.PricePoint{}, false
	}
	return series[i-1], true
}

// openPriceAt resolves the execution price for a trade on date: the day's
// open, or the nearest prior day's open if the date is absent.
func openPriceAt(priceData models.PriceDataMap, ticker, date string) (float64, bool) {
	series, ok := priceData[ticker]
	if !ok {
		return 0, false
	}
	bar, ok := barAt(series, date)
	if !ok || bar.Open <= 0 {
		return 0, false
	}
	return bar.Open, true
}

// closePriceAt returns the closing price at the given index.
func closePriceAt(series models.PriceSeries, index int) (float64, bool) {
	if index < 0 || index >= len(series) {
		return 0, false
	}
	return series[index].Close, true
}
