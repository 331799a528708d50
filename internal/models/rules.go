package models

// RuleSubject names the quantity a condition compares against.
type RuleSubject string

const (
	SubjectPortfolioValue     RuleSubject = "portfolio_value"
	SubjectCashBalance        RuleSubject = "cash_balance"
	SubjectDaysElapsed        RuleSubject = "days_elapsed"
	SubjectPortfolioChangePct RuleSubject = "portfolio_change_pct"
	SubjectPositionChangePct  RuleSubject = "position_change_pct"
	SubjectPositionWeightPct  RuleSubject = "position_weight_pct"
	SubjectMarketChangePct    RuleSubject = "market_change_pct"
)

// RuleOperator is the comparison applied to a condition's subject value.
type RuleOperator string

const (
	OpGT  RuleOperator = "gt"
	OpLT  RuleOperator = "lt"
	OpGTE RuleOperator = "gte"
	OpLTE RuleOperator = "lte"
)

// RuleCondition compares a subject against a threshold. Ticker is required
// for the per-position subjects (position_change_pct, position_weight_pct).
type RuleCondition struct {
	Subject  RuleSubject  `json:"subject" mapstructure:"subject"`
	Operator RuleOperator `json:"operator" mapstructure:"operator"`
	Value    float64      `json:"value" mapstructure:"value"`
	Ticker   string       `json:"ticker,omitempty" mapstructure:"ticker"`
}

// RuleActionKind is the closed set of actions a rule may take.
type RuleActionKind string

const (
	RuleBuy        RuleActionKind = "buy"
	RuleSellPct    RuleActionKind = "sell_pct"
	RuleSellAll    RuleActionKind = "sell_all"
	RuleRebalance  RuleActionKind = "rebalance"
	RuleMoveToCash RuleActionKind = "move_to_cash"
)

// RuleAction describes what a rule does when it fires.
type RuleAction struct {
	Kind   RuleActionKind `json:"kind" mapstructure:"kind"`
	Ticker string         `json:"ticker,omitempty" mapstructure:"ticker"` // required for buy, sell_pct, sell_all, rebalance
	Amount float64        `json:"amount,omitempty" mapstructure:"amount"` // dollars, for buy
	Pct    float64        `json:"pct,omitempty" mapstructure:"pct"`       // 0-100, for sell_pct and rebalance target
}

// DefaultCooldownTicks is applied when a rule does not set its own.
const DefaultCooldownTicks = 5

// Rule is one conditional automation rule. All conditions (1-3) must hold
// for the rule to fire; a rule with no conditions never fires.
type Rule struct {
	ID            string          `json:"id" mapstructure:"id"`
	Label         string          `json:"label" mapstructure:"label"`
	Enabled       bool            `json:"enabled" mapstructure:"enabled"`
	Conditions    []RuleCondition `json:"conditions" mapstructure:"conditions"`
	Action        RuleAction      `json:"action" mapstructure:"action"`
	CooldownTicks int             `json:"cooldown_ticks" mapstructure:"cooldown_ticks"`
	FiredCount    int             `json:"fired_count" mapstructure:"-"`
	LastFiredDate string          `json:"last_fired_date,omitempty" mapstructure:"-"`
}
