package sim

import (
	"testing"

	"market-replay/internal/models"
)

func ruleTestState(dateIndex int, cash float64) models.SimulationState {
	return models.SimulationState{
		CurrentDateIndex: dateIndex,
		Portfolio: models.Portfolio{
			CashBalance: cash,
			TotalValue:  cash,
		},
	}
}

func alwaysTrueCondition() models.RuleCondition {
	return models.RuleCondition{Subject: models.SubjectDaysElapsed, Operator: models.OpGTE, Value: 0}
}

func TestEvaluateRulesAllConditionsMustHold(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100, 100, 100)}
	state := ruleTestState(1, 10000)

	rule := models.Rule{
		ID:      "r1",
		Enabled: true,
		Conditions: []models.RuleCondition{
			{Subject: models.SubjectCashBalance, Operator: models.OpGT, Value: 5000},
			{Subject: models.SubjectDaysElapsed, Operator: models.OpGTE, Value: 10},
		},
		Action: models.RuleAction{Kind: models.RuleBuy, Ticker: "AAPL", Amount: 100},
	}

	eval := EvaluateRules(state, data, []models.Rule{rule})
	if len(eval.Fired) != 0 {
		t.Error("rule fired with one failing condition")
	}

	rule.Conditions[1].Value = 1
	eval = EvaluateRules(state, data, []models.Rule{rule})
	if len(eval.Fired) != 1 {
		t.Fatal("rule should fire when every condition holds")
	}
	if len(eval.Orders) != 1 {
		t.Fatalf("want one order, got %d", len(eval.Orders))
	}
	if eval.Orders[0].RuleID != "r1" || eval.Orders[0].Source != models.SourceRule {
		t.Errorf("order not tagged with rule: %+v", eval.Orders[0])
	}
	if eval.Updated[0].FiredCount != 1 || eval.Updated[0].LastFiredDate != "2020-01-02" {
		t.Errorf("bookkeeping wrong: %+v", eval.Updated[0])
	}
}

func TestEvaluateRulesEmptyConditionsNeverFire(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100)}
	rule := models.Rule{ID: "r1", Enabled: true, Action: models.RuleAction{Kind: models.RuleMoveToCash}}

	eval := EvaluateRules(ruleTestState(0, 10000), data, []models.Rule{rule})
	if len(eval.Fired) != 0 {
		t.Error("a rule with no conditions must never fire")
	}
}

func TestEvaluateRulesDisabledNeverFires(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100)}
	rule := models.Rule{
		ID:         "r1",
		Enabled:    false,
		Conditions: []models.RuleCondition{alwaysTrueCondition()},
		Action:     models.RuleAction{Kind: models.RuleMoveToCash},
	}

	eval := EvaluateRules(ruleTestState(0, 10000), data, []models.Rule{rule})
	if len(eval.Fired) != 0 {
		t.Error("a disabled rule must never fire")
	}
}

func TestEvaluateRulesCooldownBoundary(t *testing.T) {
	series := flatSeries("2020-01-01", 100, 100, 100, 100, 100, 100)
	data := models.PriceDataMap{"AAPL": series}

	rule := models.Rule{
		ID:            "r1",
		Enabled:       true,
		Conditions:    []models.RuleCondition{alwaysTrueCondition()},
		Action:        models.RuleAction{Kind: models.RuleMoveToCash},
		CooldownTicks: 3,
		LastFiredDate: series[0].Date,
	}

	// Fired at index 0: indexes 1 and 2 are inside the cooldown window.
	for _, idx := range []int{1, 2} {
		eval := EvaluateRules(ruleTestState(idx, 10000), data, []models.Rule{rule})
		if len(eval.Fired) != 0 {
			t.Errorf("index %d: rule fired inside cooldown", idx)
		}
	}

	// Exactly cooldown ticks later it may fire again.
	eval := EvaluateRules(ruleTestState(3, 10000), data, []models.Rule{rule})
	if len(eval.Fired) != 1 {
		t.Error("index 3: rule should fire once cooldown elapses")
	}
}

func TestEvaluateRulesCooldownIgnoresVanishedDate(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100, 100)}
	rule := models.Rule{
		ID:            "r1",
		Enabled:       true,
		Conditions:    []models.RuleCondition{alwaysTrueCondition()},
		Action:        models.RuleAction{Kind: models.RuleMoveToCash},
		CooldownTicks: 5,
		LastFiredDate: "2019-06-15", // not in the series
	}

	eval := EvaluateRules(ruleTestState(1, 10000), data, []models.Rule{rule})
	if len(eval.Fired) != 1 {
		t.Error("a last-fired date absent from the series must not block the rule")
	}
}

func TestConditionValueSubjects(t *testing.T) {
	data := models.PriceDataMap{
		"AAPL": flatSeries("2020-01-01", 100, 100),
		"SPY":  flatSeries("2020-01-01", 300, 315),
	}

	state := ruleTestState(1, 4000)
	state.Portfolio.Positions = []models.Position{{
		ID: "AAPL", Ticker: "AAPL", Kind: models.InstrumentStock,
		Quantity: 60, CurrentPrice: 100, CurrentValue: 6000,
	}}
	state.Portfolio.TotalValue = 10000
	state.History = []models.PortfolioSnapshot{{
		Date: "2020-01-01", TotalValue: 9500,
		Positions: []models.PositionSnapshot{{Ticker: "AAPL", Value: 5000, ClosePrice: 100}},
	}}

	cases := []struct {
		cond models.RuleCondition
		want float64
	}{
		{models.RuleCondition{Subject: models.SubjectPortfolioValue}, 10000},
		{models.RuleCondition{Subject: models.SubjectCashBalance}, 4000},
		{models.RuleCondition{Subject: models.SubjectDaysElapsed}, 1},
		{models.RuleCondition{Subject: models.SubjectPortfolioChangePct}, (10000.0 - 9500) / 9500 * 100},
		{models.RuleCondition{Subject: models.SubjectPositionChangePct, Ticker: "AAPL"}, (6000.0 - 5000) / 5000 * 100},
		{models.RuleCondition{Subject: models.SubjectPositionWeightPct, Ticker: "AAPL"}, 60},
		{models.RuleCondition{Subject: models.SubjectMarketChangePct}, 5},
	}

	for _, tc := range cases {
		got, ok := conditionValue(tc.cond, state, data)
		if !ok {
			t.Errorf("%s: not resolvable", tc.cond.Subject)
			continue
		}
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("%s: got %v, want %v", tc.cond.Subject, got, tc.want)
		}
	}
}

func TestConditionValueUnresolvableSubjects(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100, 100)}
	state := ruleTestState(0, 10000)

	unresolvable := []models.RuleCondition{
		{Subject: models.SubjectPortfolioChangePct},                  // no prior snapshot
		{Subject: models.SubjectPositionChangePct, Ticker: "TSLA"},   // not held
		{Subject: models.SubjectPositionWeightPct, Ticker: "TSLA"},   // not held
		{Subject: models.SubjectMarketChangePct},                     // first tick has no prior bar
		{Subject: models.RuleSubject("volume_weighted_mood"), Value: 1}, // unknown subject
	}

	for _, cond := range unresolvable {
		if _, ok := conditionValue(cond, state, data); ok {
			t.Errorf("%s should be unresolvable here", cond.Subject)
		}
	}
}

func TestRuleOrderRequiresTicker(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100)}
	rule := models.Rule{
		ID:         "r1",
		Enabled:    true,
		Conditions: []models.RuleCondition{alwaysTrueCondition()},
		Action:     models.RuleAction{Kind: models.RuleSellAll}, // no ticker
	}

	eval := EvaluateRules(ruleTestState(0, 10000), data, []models.Rule{rule})
	if len(eval.Fired) != 1 {
		t.Fatal("the rule itself still fires")
	}
	if len(eval.Orders) != 0 {
		t.Errorf("tickerless sell_all must not produce an order, got %+v", eval.Orders)
	}
	if eval.Updated[0].FiredCount != 1 {
		t.Error("fired count must still advance")
	}
}

func TestRuleOrderRebalanceConvertsPctToWeight(t *testing.T) {
	rule := models.Rule{
		ID:     "r1",
		Action: models.RuleAction{Kind: models.RuleRebalance, Ticker: "AAPL", Pct: 40},
	}

	order, ok := ruleOrder(rule)
	if !ok {
		t.Fatal("expected an order")
	}
	reb, isReb := order.Action.(models.Rebalance)
	if !isReb || reb.TargetWeight != 0.4 {
		t.Errorf("got %+v, want rebalance to weight 0.4", order.Action)
	}
}

func TestEvaluateRulesDoesNotMutateInputRules(t *testing.T) {
	data := models.PriceDataMap{"AAPL": flatSeries("2020-01-01", 100)}
	rules := []models.Rule{{
		ID:         "r1",
		Enabled:    true,
		Conditions: []models.RuleCondition{alwaysTrueCondition()},
		Action:     models.RuleAction{Kind: models.RuleMoveToCash},
	}}

	_ = EvaluateRules(ruleTestState(0, 10000), data, rules)
	if rules[0].FiredCount != 0 || rules[0].LastFiredDate != "" {
		t.Errorf("input rules were mutated: %+v", rules[0])
	}
}
