package models

// SimulationConfig is the caller-supplied setup for one run.
type SimulationConfig struct {
	StartingCapital float64      `json:"starting_capital"`
	Scenario        Scenario     `json:"scenario"`
	Allocations     []Allocation `json:"allocations"`
	Rules           []Rule       `json:"rules"`
}

// SimulationState is the full state of a run. It is threaded explicitly
// from each tick's output to the next tick's input; the engine owns no
// global instance.
type SimulationState struct {
	Config           SimulationConfig    `json:"config"`
	CurrentDateIndex int                 `json:"current_date_index"`
	Portfolio        Portfolio           `json:"portfolio"`
	History          []PortfolioSnapshot `json:"history"`
	Rules            []Rule              `json:"rules"`
	RulesLog         []RuleFireEvent     `json:"rules_log"`
	Events           []DomainEvent       `json:"events"`
	PendingOrders    []TradeOrder        `json:"-"`
	ManualTradeCount int                 `json:"manual_trade_count"`
	IsComplete       bool                `json:"is_complete"`
}

// LastSnapshot returns the most recent snapshot, if any.
func (s SimulationState) LastSnapshot() (PortfolioSnapshot, bool) {
	if len(s.History) == 0 {
		return PortfolioSnapshot{}, false
	}
	return s.History[len(s.History)-1], true
}
