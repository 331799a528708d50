package models

// EventTrigger identifies what caused a domain event. The engine emits only
// (trigger, context) pairs; rendering them as text is a presentation
// concern handled outside the core.
type EventTrigger string

const (
	TriggerPositionUp10           EventTrigger = "position_up_10"
	TriggerPositionDown10         EventTrigger = "position_down_10"
	TriggerPositionUp25           EventTrigger = "position_up_25"
	TriggerPositionDown25         EventTrigger = "position_down_25"
	TriggerPortfolioNewHigh       EventTrigger = "portfolio_new_high"
	TriggerRuleFired              EventTrigger = "rule_fired"
	TriggerOptionExpiredWorthless EventTrigger = "option_expired_worthless"
	TriggerOptionExercised        EventTrigger = "option_exercised"
	TriggerSimulationComplete     EventTrigger = "simulation_complete"
)

// EventContext carries the structured payload of a domain event.
type EventContext struct {
	Ticker             string  `json:"ticker,omitempty"`
	ChangePct          float64 `json:"change_pct,omitempty"`
	PortfolioValue     float64 `json:"portfolio_value,omitempty"`
	PortfolioChangePct float64 `json:"portfolio_change_pct,omitempty"`
	RuleLabel          string  `json:"rule_label,omitempty"`
}

// DomainEvent is one structured event emitted during a tick.
type DomainEvent struct {
	ID      string       `json:"id"`
	Trigger EventTrigger `json:"trigger"`
	Context EventContext `json:"context"`
	Date    string       `json:"date"` // simulation date
}

// RuleFireEvent is one log row recording that a rule fired.
type RuleFireEvent struct {
	RuleID    string `json:"rule_id"`
	RuleLabel string `json:"rule_label"`
	Date      string `json:"date"`
	Action    string `json:"action"`
}
