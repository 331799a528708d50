package sim

import "market-replay/internal/models"

// RuleEvaluation is the outcome of one rule pass.
type RuleEvaluation struct {
	Fired   []models.Rule
	Orders  []models.TradeOrder
	Updated []models.Rule
}

// EvaluateRules evaluates every rule against the current state and price
// data. A rule fires iff it is enabled, off cooldown, and all of its
// conditions hold; a rule with no conditions never fires. Fire-count and
// last-fired bookkeeping is returned in Updated and must be threaded into
// the next tick by the caller.
func EvaluateRules(state models.SimulationState, priceData models.PriceDataMap, rules []models.Rule) RuleEvaluation {
	eval := RuleEvaluation{Updated: make([]models.Rule, len(rules))}
	copy(eval.Updated, rules)

	primary := priceData[PrimaryTicker(priceData)]
	date := ""
	if state.CurrentDateIndex >= 0 && state.CurrentDateIndex < len(primary) {
		date = primary[state.CurrentDateIndex].Date
	}

	for i, rule := range rules {
		if !rule.Enabled || len(rule.Conditions) == 0 {
			continue
		}
		if onCooldown(rule, primary, state.CurrentDateIndex) {
			continue
		}
		if !allConditionsMet(rule.Conditions, state, priceData) {
			continue
		}

		eval.Fired = append(eval.Fired, rule)
		if order, ok := ruleOrder(rule); ok {
			eval.Orders = append(eval.Orders, order)
		}

		eval.Updated[i].FiredCount++
		eval.Updated[i].LastFiredDate = date
	}
	return eval
}

// onCooldown recovers the fired tick's index by locating its date in the
// primary series. A last-fired date that no longer exists in the series
// (projected data regenerated) does not block the rule.
func onCooldown(rule models.Rule, primary models.PriceSeries, currentIndex int) bool {
	if rule.CooldownTicks <= 0 || rule.LastFiredDate == "" {
		return false
	}
	lastIndex := dateIndex(primary, rule.LastFiredDate)
	if lastIndex < 0 {
		return false
	}
	return currentIndex-lastIndex < rule.CooldownTicks
}

func allConditionsMet(conditions []models.RuleCondition, state models.SimulationState, priceData models.PriceDataMap) bool {
	for _, cond := range conditions {
		value, ok := conditionValue(cond, state, priceData)
		if !ok || !compare(value, cond.Operator, cond.Value) {
			return false
		}
	}
	return true
}

// conditionValue resolves a condition's subject to a number. ok is false
// when the subject is undefined this tick (absent position, no prior
// snapshot, no benchmark bar), which makes the condition unsatisfiable.
func conditionValue(cond models.RuleCondition, state models.SimulationState, priceData models.PriceDataMap) (float64, bool) {
	switch cond.Subject {
	case models.SubjectPortfolioValue:
		return state.Portfolio.TotalValue, true

	case models.SubjectCashBalance:
		return state.Portfolio.CashBalance, true

	case models.SubjectDaysElapsed:
		return float64(state.CurrentDateIndex), true

	case models.SubjectPortfolioChangePct:
		prev, ok := state.LastSnapshot()
		if !ok || prev.TotalValue == 0 {
			return 0, false
		}
		return (state.Portfolio.TotalValue - prev.TotalValue) / prev.TotalValue * 100, true

	case models.SubjectPositionChangePct:
		pos, held := state.Portfolio.Position(cond.Ticker)
		prev, ok := state.LastSnapshot()
		if !held || !ok {
			return 0, false
		}
		for _, ps := range prev.Positions {
			if ps.Ticker == cond.Ticker && ps.Value != 0 {
				return (pos.CurrentValue - ps.Value) / ps.Value * 100, true
			}
		}
		return 0, false

	case models.SubjectPositionWeightPct:
		pos, held := state.Portfolio.Position(cond.Ticker)
		if !held || state.Portfolio.TotalValue == 0 {
			return 0, false
		}
		return pos.CurrentValue / state.Portfolio.TotalValue * 100, true

	case models.SubjectMarketChangePct:
		series := BenchmarkSeries(priceData)
		i := state.CurrentDateIndex
		if i <= 0 || i >= len(series) || series[i-1].Close == 0 {
			return 0, false
		}
		return (series[i].Close - series[i-1].Close) / series[i-1].Close * 100, true
	}
	return 0, false
}

func compare(value float64, op models.RuleOperator, threshold float64) bool {
	switch op {
	case models.OpGT:
		return value > threshold
	case models.OpLT:
		return value < threshold
	case models.OpGTE:
		return value >= threshold
	case models.OpLTE:
		return value <= threshold
	}
	return false
}

// ruleOrder translates a fired rule's action into a trade order tagged
// with the originating rule. Actions that need a ticker produce no order
// when it is absent.
func ruleOrder(rule models.Rule) (models.TradeOrder, bool) {
	a := rule.Action
	switch a.Kind {
	case models.RuleBuy:
		if a.Ticker == "" {
			return models.TradeOrder{}, false
		}
		return models.NewRuleOrder(models.Buy{Ticker: a.Ticker, Amount: a.Amount}, rule.ID), true
	case models.RuleSellPct:
		if a.Ticker == "" {
			return models.TradeOrder{}, false
		}
		return models.NewRuleOrder(models.SellPct{Ticker: a.Ticker, Pct: a.Pct}, rule.ID), true
	case models.RuleSellAll:
		if a.Ticker == "" {
			return models.TradeOrder{}, false
		}
		return models.NewRuleOrder(models.SellAll{Ticker: a.Ticker}, rule.ID), true
	case models.RuleRebalance:
		if a.Ticker == "" {
			return models.TradeOrder{}, false
		}
		return models.NewRuleOrder(models.Rebalance{Ticker: a.Ticker, TargetWeight: a.Pct / 100}, rule.ID), true
	case models.RuleMoveToCash:
		return models.NewRuleOrder(models.MoveToCash{}, rule.ID), true
	}
	return models.TradeOrder{}, false
}
