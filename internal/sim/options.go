package sim

import (
	"math"
	"time"

	"market-replay/internal/models"
	"market-replay/internal/pricing"
)

const contractSize = 100

// RevalueOption computes the externally reported value of an option
// position at the given index of its underlying series. A written (short)
// option reports the negative of the long-side fair value scaled by
// contract size and count: a liability that deepens as the position moves
// in-the-money against the writer.
func RevalueOption(pos models.Position, underlying models.PriceSeries, dateIndex int, riskFreeRate float64) float64 {
	cfg := pos.Option
	if cfg == nil {
		return pos.CurrentValue
	}
	if dateIndex < 0 || dateIndex >= len(underlying) {
		return 0
	}

	bar := underlying[dateIndex]
	if bar.Close <= 0 {
		return 0
	}

	closes := make([]float64, 0, dateIndex+1)
	for _, p := range underlying[:dateIndex+1] {
		closes = append(closes, p.Close)
	}

	result := pricing.BlackScholes(pricing.Inputs{
		Spot:   bar.Close,
		Strike: cfg.Strike,
		TTE:    yearsBetween(bar.Date, cfg.ExpiryDate),
		Rate:   riskFreeRate,
		Sigma:  pricing.HistoricalVolatility(closes, pricing.DefaultVolWindow),
		Type:   cfg.Type,
	})

	value := result.Price * contractSize * float64(cfg.Contracts)
	if cfg.Short() {
		return -value
	}
	return value
}

// IsExpiring reports whether the option position expires on date.
func IsExpiring(pos models.Position, date string) bool {
	return pos.Option != nil && pos.Option.ExpiryDate == date
}

// SettleExpiry cash-settles an expiring option position against the
// underlying price and removes it. No shares are assigned; an ITM
// assignment debits cash by the intrinsic value, floored at zero cash.
// Returns the new portfolio and whether the option was exercised against
// the holder.
func SettleExpiry(p models.Portfolio, pos models.Position, underlyingPrice float64) (models.Portfolio, bool) {
	cfg := pos.Option
	if cfg == nil {
		return p, false
	}

	var itm bool
	var intrinsicPerShare float64
	switch cfg.Strategy {
	case models.StrategyShortPut:
		// ITM for the buyer when the stock closed below strike.
		itm = underlyingPrice < cfg.Strike
		intrinsicPerShare = cfg.Strike - underlyingPrice
	case models.StrategyCoveredCall:
		// Upside capped at strike: pay out everything above it.
		itm = underlyingPrice > cfg.Strike
		intrinsicPerShare = underlyingPrice - cfg.Strike
	default:
		return p, false
	}

	out := p.Clone()
	out.Positions = removePosition(out.Positions, pos.ID)

	if itm {
		loss := intrinsicPerShare * contractSize * float64(cfg.Contracts)
		// Floored at zero: an under-reported loss beats a negative-cash state.
		out.CashBalance = math.Max(out.CashBalance-loss, 0)
	}
	return settle(out), itm
}

func removePosition(positions []models.Position, id string) []models.Position {
	out := positions[:0]
	for _, pos := range positions {
		if pos.ID != id {
			out = append(out, pos)
		}
	}
	return out
}

// yearsBetween returns the day distance between two ISO dates in years,
// never negative. Unparseable dates count as expired.
func yearsBetween(from, to string) float64 {
	start, err1 := time.Parse("2006-01-02", from)
	end, err2 := time.Parse("2006-01-02", to)
	if err1 != nil || err2 != nil {
		return 0
	}
	days := end.Sub(start).Hours() / 24
	if days < 0 {
		return 0
	}
	return days / 365
}

// MakeSellPutOrder prices a cash-secured put at the current bar of the
// underlying and returns a ready order carrying the premium.
func MakeSellPutOrder(state models.SimulationState, priceData models.PriceDataMap, ticker string, strike float64, expiryDate string, contracts int) (models.TradeOrder, bool) {
	premium, ok := premiumAt(state, priceData, ticker, strike, expiryDate, contracts, models.OptionPut)
	if !ok {
		return models.TradeOrder{}, false
	}
	return models.NewManualOrder(models.SellPut{
		Ticker:     ticker,
		Strike:     strike,
		ExpiryDate: expiryDate,
		Contracts:  contracts,
		Premium:    premium,
	}), true
}

// MakeCoveredCallOrder prices a call against held shares at the current
// bar of the underlying and returns a ready order carrying the premium.
// The writer must already hold 100 shares per contract.
func MakeCoveredCallOrder(state models.SimulationState, priceData models.PriceDataMap, ticker string, strike float64, expiryDate string, contracts int) (models.TradeOrder, bool) {
	idx := stockPositionIndex(state.Portfolio, ticker)
	if idx < 0 || state.Portfolio.Positions[idx].Quantity < float64(contracts)*contractSize {
		return models.TradeOrder{}, false
	}
	premium, ok := premiumAt(state, priceData, ticker, strike, expiryDate, contracts, models.OptionCall)
	if !ok {
		return models.TradeOrder{}, false
	}
	return models.NewManualOrder(models.SellCall{
		Ticker:     ticker,
		Strike:     strike,
		ExpiryDate: expiryDate,
		Contracts:  contracts,
		Premium:    premium,
	}), true
}

// premiumAt prices an option write at the current bar of the
// underlying, using trailing historical volatility.
func premiumAt(state models.SimulationState, priceData models.PriceDataMap, ticker string, strike float64, expiryDate string, contracts int, optType models.OptionType) (float64, bool) {
	series, ok := priceData[ticker]
	if !ok || contracts <= 0 {
		return 0, false
	}
	idx := state.CurrentDateIndex
	if idx < 0 || idx >= len(series) || series[idx].Close <= 0 {
		return 0, false
	}

	closes := make([]float64, 0, idx+1)
	for _, p := range series[:idx+1] {
		closes = append(closes, p.Close)
	}

	result := pricing.BlackScholes(pricing.Inputs{
		Spot:   series[idx].Close,
		Strike: strike,
		TTE:    yearsBetween(series[idx].Date, expiryDate),
		Rate:   state.Config.Scenario.RiskFreeRate,
		Sigma:  pricing.HistoricalVolatility(closes, pricing.DefaultVolWindow),
		Type:   optType,
	})
	return result.Price * contractSize * float64(contracts), true
}
