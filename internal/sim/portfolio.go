package sim

import (
	"math"

	"market-replay/internal/models"
)

// fullSalePct treats a sell at or above this percentage as a full
// liquidation, so float drift never leaves a dust quantity behind.
const fullSalePct = 100 - 1e-6

// minRebalanceDiff ignores rebalance differences below one dollar.
const minRebalanceDiff = 1.0

// NewPortfolio creates an empty portfolio from starting capital.
func NewPortfolio(startingCapital float64) models.Portfolio {
	return models.Portfolio{
		Positions:     []models.Position{},
		CashBalance:   startingCapital,
		TotalValue:    startingCapital,
		StartingValue: startingCapital,
	}
}

// ApplyTrade applies a single order to the portfolio and returns the new
// portfolio. Fills use the instrument's opening price on date (or the
// nearest prior bar). Every path is total: missing prices, missing
// positions and degenerate amounts return the input unchanged.
func ApplyTrade(p models.Portfolio, order models.TradeOrder, priceData models.PriceDataMap, date string) models.Portfolio {
	switch a := order.Action.(type) {
	case models.Buy:
		return applyBuy(p, a, priceData, date)
	case models.SellPct:
		return applySellPct(p, a, priceData, date)
	case models.SellAll:
		return applySellAll(p, a, priceData, date)
	case models.Rebalance:
		return applyRebalance(p, a, priceData, date)
	case models.MoveToCash:
		return applyMoveToCash(p, priceData, date)
	case models.SellPut:
		return applySellPut(p, a, date)
	case models.SellCall:
		return applySellCall(p, a, date)
	case models.CloseOption:
		return applyCloseOption(p, a)
	default:
		return p
	}
}

// RecomputeValues marks all non-option positions to the closing price at
// dateIndex and recomputes the portfolio total. Option positions are
// revalued separately by the options lifecycle.
func RecomputeValues(p models.Portfolio, priceData models.PriceDataMap, dateIndex int) models.Portfolio {
	out := p.Clone()
	for i, pos := range out.Positions {
		if pos.IsOption() {
			continue
		}
		series, ok := priceData[pos.Ticker]
		if !ok {
			continue
		}
		closePx, ok := closePriceAt(series, dateIndex)
		if !ok || closePx <= 0 {
			continue
		}
		out.Positions[i].CurrentPrice = closePx
		out.Positions[i].CurrentValue = pos.Quantity * closePx
	}
	return settle(out)
}

// settle restores the totalValue identity after a mutation.
func settle(p models.Portfolio) models.Portfolio {
	p.TotalValue = p.CashBalance + p.PositionsValue()
	return p
}

func applyBuy(p models.Portfolio, a models.Buy, priceData models.PriceDataMap, date string) models.Portfolio {
	price, ok := openPriceAt(priceData, a.Ticker, date)
	if !ok || p.CashBalance <= 0 || a.Amount <= 0 {
		return p
	}

	amount := math.Min(a.Amount, p.CashBalance)
	quantity := amount / price

	out := p.Clone()
	out.CashBalance -= amount

	idx := stockPositionIndex(out, a.Ticker)
	if idx >= 0 {
		pos := out.Positions[idx]
		totalQty := pos.Quantity + quantity
		// Cash-weighted average entry price.
		pos.EntryPrice = (pos.Quantity*pos.EntryPrice + quantity*price) / totalQty
		pos.Quantity = totalQty
		pos.CurrentPrice = price
		pos.CurrentValue = totalQty * price
		out.Positions[idx] = pos
	} else {
		out.Positions = append(out.Positions, models.Position{
			ID:           a.Ticker,
			Ticker:       a.Ticker,
			Kind:         models.InstrumentStock,
			Quantity:     quantity,
			EntryPrice:   price,
			EntryDate:    date,
			CurrentPrice: price,
			CurrentValue: quantity * price,
		})
	}
	return settle(out)
}

func applySellPct(p models.Portfolio, a models.SellPct, priceData models.PriceDataMap, date string) models.Portfolio {
	idx := stockPositionIndex(p, a.Ticker)
	if idx < 0 {
		return p
	}
	price, ok := openPriceAt(priceData, a.Ticker, date)
	if !ok {
		return p
	}

	pct := math.Max(0, math.Min(a.Pct, 100))
	if pct == 0 {
		return p
	}

	out := p.Clone()
	pos := out.Positions[idx]

	if pct >= fullSalePct {
		out.CashBalance += pos.Quantity * price
		out.Positions = append(out.Positions[:idx], out.Positions[idx+1:]...)
		return settle(out)
	}

	soldQty := pos.Quantity * pct / 100
	out.CashBalance += soldQty * price
	pos.Quantity -= soldQty
	pos.CurrentPrice = price
	pos.CurrentValue = pos.Quantity * price
	out.Positions[idx] = pos
	return settle(out)
}

func applySellAll(p models.Portfolio, a models.SellAll, priceData models.PriceDataMap, date string) models.Portfolio {
	idx := stockPositionIndex(p, a.Ticker)
	if idx < 0 {
		return p
	}

	out := p.Clone()
	pos := out.Positions[idx]

	// Fall back to the last known price when the market has no bar.
	price, ok := openPriceAt(priceData, a.Ticker, date)
	if !ok {
		price = pos.CurrentPrice
	}

	out.CashBalance += pos.Quantity * price
	out.Positions = append(out.Positions[:idx], out.Positions[idx+1:]...)
	return settle(out)
}

func applyRebalance(p models.Portfolio, a models.Rebalance, priceData models.PriceDataMap, date string) models.Portfolio {
	weight := math.Max(0, math.Min(a.TargetWeight, 1))
	target := weight * p.TotalValue

	var current float64
	if idx := stockPositionIndex(p, a.Ticker); idx >= 0 {
		pos := p.Positions[idx]
		if price, ok := openPriceAt(priceData, a.Ticker, date); ok {
			current = pos.Quantity * price
		} else {
			current = pos.CurrentValue
		}
	}

	diff := target - current
	if math.Abs(diff) < minRebalanceDiff {
		return p
	}
	if diff > 0 {
		return applyBuy(p, models.Buy{Ticker: a.Ticker, Amount: diff}, priceData, date)
	}
	if current <= 0 {
		return p
	}
	return applySellPct(p, models.SellPct{Ticker: a.Ticker, Pct: -diff / current * 100}, priceData, date)
}

func applyMoveToCash(p models.Portfolio, priceData models.PriceDataMap, date string) models.Portfolio {
	out := p
	// Option positions stay open; liquidating one mid-life is CloseOption.
	for _, pos := range p.Positions {
		if pos.IsOption() {
			continue
		}
		out = applySellAll(out, models.SellAll{Ticker: pos.Ticker}, priceData, date)
	}
	return out
}

func applySellPut(p models.Portfolio, a models.SellPut, date string) models.Portfolio {
	if a.Contracts <= 0 || a.Strike <= 0 || a.Premium < 0 || a.ExpiryDate == "" {
		return p
	}

	cfg := models.OptionConfig{
		Underlying: a.Ticker,
		Strategy:   models.StrategyShortPut,
		Type:       models.OptionPut,
		Strike:     a.Strike,
		ExpiryDate: a.ExpiryDate,
		Contracts:  a.Contracts,
	}

	out := p.Clone()
	out.CashBalance += a.Premium
	out.Positions = append(out.Positions, models.Position{
		ID:           models.OptionPositionID(cfg, date),
		Ticker:       a.Ticker,
		Kind:         models.InstrumentOption,
		Quantity:     float64(a.Contracts),
		EntryPrice:   a.Premium / (float64(a.Contracts) * contractSize), // per share
		EntryDate:    date,
		CurrentPrice: 0,
		// Premium received exactly offsets the new liability, so total
		// portfolio value is unchanged at the moment of writing.
		CurrentValue: -a.Premium,
		Option:       &cfg,
	})
	return settle(out)
}

func applySellCall(p models.Portfolio, a models.SellCall, date string) models.Portfolio {
	if a.Contracts <= 0 || a.Strike <= 0 || a.Premium < 0 || a.ExpiryDate == "" {
		return p
	}
	// Covered means covered: the writer must hold the shares.
	idx := stockPositionIndex(p, a.Ticker)
	if idx < 0 || p.Positions[idx].Quantity < float64(a.Contracts)*contractSize {
		return p
	}

	cfg := models.OptionConfig{
		Underlying: a.Ticker,
		Strategy:   models.StrategyCoveredCall,
		Type:       models.OptionCall,
		Strike:     a.Strike,
		ExpiryDate: a.ExpiryDate,
		Contracts:  a.Contracts,
	}

	out := p.Clone()
	out.CashBalance += a.Premium
	out.Positions = append(out.Positions, models.Position{
		ID:           models.OptionPositionID(cfg, date),
		Ticker:       a.Ticker,
		Kind:         models.InstrumentOption,
		Quantity:     float64(a.Contracts),
		EntryPrice:   a.Premium / (float64(a.Contracts) * contractSize), // per share
		EntryDate:    date,
		CurrentPrice: 0,
		CurrentValue: -a.Premium,
		Option:       &cfg,
	})
	return settle(out)
}

func applyCloseOption(p models.Portfolio, a models.CloseOption) models.Portfolio {
	idx := -1
	for i, pos := range p.Positions {
		if pos.ID == a.PositionID && pos.IsOption() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return p
	}

	out := p.Clone()
	cost := math.Abs(out.Positions[idx].CurrentValue)
	out.CashBalance = math.Max(out.CashBalance-cost, 0)
	out.Positions = append(out.Positions[:idx], out.Positions[idx+1:]...)
	return settle(out)
}

// stockPositionIndex finds the non-option position for a ticker.
func stockPositionIndex(p models.Portfolio, ticker string) int {
	for i, pos := range p.Positions {
		if pos.Ticker == ticker && !pos.IsOption() {
			return i
		}
	}
	return -1
}
