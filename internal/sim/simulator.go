package sim

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"market-replay/internal/models"
)

// Position-move thresholds for domain events, in percentage points.
const (
	moveThresholdMinor = 10
	moveThresholdMajor = 25
)

// NewSimulation builds the initial state for a run. Initial allocations
// are queued as allocation-sourced buys so the first tick fills them at
// the first bar's open without counting as user trades. Rules without
// an id are assigned one here; AdvanceTick itself mints nothing
// non-deterministic.
func NewSimulation(config models.SimulationConfig) models.SimulationState {
	rules := make([]models.Rule, len(config.Rules))
	copy(rules, config.Rules)
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = uuid.NewString()
		}
		if rules[i].CooldownTicks == 0 {
			rules[i].CooldownTicks = models.DefaultCooldownTicks
		}
	}

	state := models.SimulationState{
		Config:    config,
		Portfolio: NewPortfolio(config.StartingCapital),
		Rules:     rules,
	}
	for _, alloc := range config.Allocations {
		amount := config.StartingCapital * alloc.Pct / 100
		if amount <= 0 || alloc.Ticker == "" {
			continue
		}
		state.PendingOrders = append(state.PendingOrders,
			models.NewAllocationOrder(models.Buy{Ticker: alloc.Ticker, Amount: amount}))
	}
	return state
}

// QueueOrder queues a trade order for the next tick.
func QueueOrder(state models.SimulationState, order models.TradeOrder) models.SimulationState {
	out := state
	out.PendingOrders = append(copyOrders(state.PendingOrders), order)
	return out
}

// AdvanceTick advances the simulation by one trading day and returns the
// new state. Identical inputs always yield an identical result; a
// completed state is terminal and returned unchanged.
func AdvanceTick(state models.SimulationState, priceData models.PriceDataMap) models.SimulationState {
	if state.IsComplete {
		return state
	}

	primary := priceData[PrimaryTicker(priceData)]
	if state.CurrentDateIndex >= len(primary) {
		out := state
		out.IsComplete = true
		return out
	}
	bar := primary[state.CurrentDateIndex]
	date := bar.Date

	out := state
	out.Rules = make([]models.Rule, len(state.Rules))
	copy(out.Rules, state.Rules)
	out.History = copySnapshots(state.History)
	out.RulesLog = append([]models.RuleFireEvent{}, state.RulesLog...)
	out.Events = append([]models.DomainEvent{}, state.Events...)
	out.PendingOrders = nil

	// 1. Manual orders fill at the day's open.
	for _, order := range state.PendingOrders {
		out.Portfolio = ApplyTrade(out.Portfolio, order, priceData, date)
		if order.Source == models.SourceManual {
			out.ManualTradeCount++
		}
	}

	// 2. Rules run against the post-trade state; their orders fill at the
	// same open.
	eval := EvaluateRules(out, priceData, out.Rules)
	out.Rules = eval.Updated
	for _, order := range eval.Orders {
		out.Portfolio = ApplyTrade(out.Portfolio, order, priceData, date)
	}
	for _, rule := range eval.Fired {
		out.RulesLog = append(out.RulesLog, models.RuleFireEvent{
			RuleID:    rule.ID,
			RuleLabel: rule.Label,
			Date:      date,
			Action:    string(rule.Action.Kind),
		})
		out.Events = append(out.Events, newEvent(date, models.TriggerRuleFired, models.EventContext{
			RuleLabel:      rule.Label,
			PortfolioValue: out.Portfolio.TotalValue,
		}, rule.ID))
	}

	// 3. Options: settle the expiring, revalue the rest at the close.
	out.Portfolio, out.Events = processOptions(out.Portfolio, out.Events, priceData, state.CurrentDateIndex, date, state.Config.Scenario.RiskFreeRate)

	// 4. Mark remaining positions to the close.
	out.Portfolio = RecomputeValues(out.Portfolio, priceData, state.CurrentDateIndex)

	// 5. Immutable end-of-day snapshot.
	snapshot := buildSnapshot(out, date, bar.Projected)
	out.Events = appendMoveEvents(out.Events, state, snapshot)
	out.History = append(out.History, snapshot)

	// 6. Advance the cursor.
	out.CurrentDateIndex = state.CurrentDateIndex + 1
	if out.CurrentDateIndex >= len(primary) {
		out.IsComplete = true
		out.Events = append(out.Events, newEvent(date, models.TriggerSimulationComplete, models.EventContext{
			PortfolioValue: out.Portfolio.TotalValue,
		}, ""))
	}
	return out
}

// processOptions settles options expiring on date and revalues the rest.
func processOptions(p models.Portfolio, events []models.DomainEvent, priceData models.PriceDataMap, dateIdx int, date string, riskFreeRate float64) (models.Portfolio, []models.DomainEvent) {
	out := p.Clone()

	// Snapshot ids first: settlement removes positions while we iterate.
	var optionIDs []string
	for _, pos := range out.Positions {
		if pos.IsOption() {
			optionIDs = append(optionIDs, pos.ID)
		}
	}

	for _, id := range optionIDs {
		pos, held := out.PositionByID(id)
		if !held {
			continue
		}
		underlying := priceData[pos.Option.Underlying]

		if IsExpiring(pos, date) {
			underlyingPrice := pos.CurrentPrice
			if b, ok := barAt(underlying, date); ok {
				underlyingPrice = b.Close
			}
			var exercised bool
			out, exercised = SettleExpiry(out, pos, underlyingPrice)
			trigger := models.TriggerOptionExpiredWorthless
			if exercised {
				trigger = models.TriggerOptionExercised
			}
			events = append(events, newEvent(date, trigger, models.EventContext{
				Ticker:         pos.Option.Underlying,
				PortfolioValue: out.TotalValue,
			}, id))
			continue
		}

		idx := dateIndex(underlying, date)
		if idx < 0 {
			continue
		}
		for i := range out.Positions {
			if out.Positions[i].ID == id {
				out.Positions[i].CurrentValue = RevalueOption(pos, underlying, idx, riskFreeRate)
				out.Positions[i].CurrentPrice = underlying[idx].Close
			}
		}
	}
	return settle(out), events
}

// buildSnapshot records end-of-tick portfolio state. Day returns compare
// against the previous snapshot, or the starting value when none exists.
func buildSnapshot(state models.SimulationState, date string, projected bool) models.PortfolioSnapshot {
	prev, hasPrev := state.LastSnapshot()

	prevTotal := state.Portfolio.StartingValue
	if hasPrev {
		prevTotal = prev.TotalValue
	}

	snapshot := models.PortfolioSnapshot{
		Date:        date,
		TotalValue:  state.Portfolio.TotalValue,
		CashBalance: state.Portfolio.CashBalance,
		Projected:   projected,
	}
	if prevTotal != 0 {
		snapshot.DayReturn = (state.Portfolio.TotalValue - prevTotal) / prevTotal * 100
	}
	if state.Portfolio.StartingValue != 0 {
		snapshot.CumulativeReturn = (state.Portfolio.TotalValue - state.Portfolio.StartingValue) / state.Portfolio.StartingValue * 100
	}

	for _, pos := range state.Portfolio.Positions {
		ps := models.PositionSnapshot{
			Ticker:     pos.Ticker,
			Value:      pos.CurrentValue,
			Quantity:   pos.Quantity,
			ClosePrice: pos.CurrentPrice,
			Projected:  projected,
		}
		if hasPrev {
			for _, prevPos := range prev.Positions {
				if prevPos.Ticker != pos.Ticker {
					continue
				}
				if pos.IsOption() {
					if prevPos.Value != 0 {
						ps.DayReturn = (pos.CurrentValue - prevPos.Value) / math.Abs(prevPos.Value) * 100
					}
				} else if prevPos.ClosePrice != 0 {
					ps.DayReturn = (pos.CurrentPrice - prevPos.ClosePrice) / prevPos.ClosePrice * 100
				}
				break
			}
		}
		snapshot.Positions = append(snapshot.Positions, ps)
	}
	return snapshot
}

// appendMoveEvents emits portfolio-high and position-move events for the
// snapshot just built.
func appendMoveEvents(events []models.DomainEvent, prevState models.SimulationState, snap models.PortfolioSnapshot) []models.DomainEvent {
	high := prevState.Portfolio.StartingValue
	for _, s := range prevState.History {
		if s.TotalValue > high {
			high = s.TotalValue
		}
	}
	if snap.TotalValue > high {
		events = append(events, newEvent(snap.Date, models.TriggerPortfolioNewHigh, models.EventContext{
			PortfolioValue:     snap.TotalValue,
			PortfolioChangePct: snap.DayReturn,
		}, ""))
	}

	for _, ps := range snap.Positions {
		trigger, crossed := moveTrigger(ps.DayReturn)
		if !crossed {
			continue
		}
		events = append(events, newEvent(snap.Date, trigger, models.EventContext{
			Ticker:    ps.Ticker,
			ChangePct: ps.DayReturn,
		}, ps.Ticker))
	}
	return events
}

func moveTrigger(dayReturn float64) (models.EventTrigger, bool) {
	switch {
	case dayReturn >= moveThresholdMajor:
		return models.TriggerPositionUp25, true
	case dayReturn <= -moveThresholdMajor:
		return models.TriggerPositionDown25, true
	case dayReturn >= moveThresholdMinor:
		return models.TriggerPositionUp10, true
	case dayReturn <= -moveThresholdMinor:
		return models.TriggerPositionDown10, true
	}
	return "", false
}

// newEvent builds a domain event with a deterministic id, keeping
// AdvanceTick replayable.
func newEvent(date string, trigger models.EventTrigger, ctx models.EventContext, key string) models.DomainEvent {
	return models.DomainEvent{
		ID:      fmt.Sprintf("%s:%s:%s", date, trigger, key),
		Trigger: trigger,
		Context: ctx,
		Date:    date,
	}
}

func copySnapshots(in []models.PortfolioSnapshot) []models.PortfolioSnapshot {
	out := make([]models.PortfolioSnapshot, len(in))
	copy(out, in)
	return out
}

func copyOrders(in []models.TradeOrder) []models.TradeOrder {
	out := make([]models.TradeOrder, len(in))
	copy(out, in)
	return out
}
