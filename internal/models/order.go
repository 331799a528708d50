package models

// OrderSource records where an order originated.
type OrderSource string

const (
	SourceManual     OrderSource = "manual"
	SourceRule       OrderSource = "rule"
	SourceAllocation OrderSource = "allocation"
)

// OrderAction is a closed set of trade actions. Each variant carries only
// the fields that make sense for it, so a move-to-cash can never carry a
// strike price and the trade executor can switch exhaustively.
type OrderAction interface {
	ActionName() string
}

// Buy invests a dollar amount into a ticker, clamped to available cash.
type Buy struct {
	Ticker string
	Amount float64 // dollars
}

// SellPct sells a percentage (0-100) of a held position.
type SellPct struct {
	Ticker string
	Pct    float64
}

// SellAll liquidates a held position entirely.
type SellAll struct {
	Ticker string
}

// Rebalance buys or sells toward a target portfolio weight (0-1).
type Rebalance struct {
	Ticker       string
	TargetWeight float64
}

// MoveToCash liquidates every non-option position. Open option positions
// are left alone; closing one mid-life is a separate CloseOption action.
type MoveToCash struct{}

// SellPut writes a cash-secured put. Premium is precomputed by the caller
// and credited to cash; the short position opens valued at exactly
// -Premium so total portfolio value is unchanged at the moment of writing.
type SellPut struct {
	Ticker     string
	Strike     float64
	ExpiryDate string // YYYY-MM-DD
	Contracts  int
	Premium    float64 // total dollars
}

// SellCall writes a covered call against held shares. The fill requires
// 100 shares per contract of the underlying as collateral. Premium is
// precomputed by the caller and credited to cash; the short position
// opens valued at exactly -Premium.
type SellCall struct {
	Ticker     string
	Strike     float64
	ExpiryDate string // YYYY-MM-DD
	Contracts  int
	Premium    float64 // total dollars
}

// CloseOption buys back an open option position at its current value.
type CloseOption struct {
	PositionID string
}

func (Buy) ActionName() string         { return "buy" }
func (SellPct) ActionName() string     { return "sell_pct" }
func (SellAll) ActionName() string     { return "sell_all" }
func (Rebalance) ActionName() string   { return "rebalance" }
func (MoveToCash) ActionName() string  { return "move_to_cash" }
func (SellPut) ActionName() string     { return "sell_put" }
func (SellCall) ActionName() string    { return "sell_call" }
func (CloseOption) ActionName() string { return "close_option" }

// TradeOrder is one queued trade: a closed action variant plus its origin.
type TradeOrder struct {
	Action OrderAction
	Source OrderSource
	RuleID string // set when Source == SourceRule
}

// NewManualOrder wraps an action as a manually submitted order.
func NewManualOrder(action OrderAction) TradeOrder {
	return TradeOrder{Action: action, Source: SourceManual}
}

// NewRuleOrder wraps an action as a rule-generated order.
func NewRuleOrder(action OrderAction, ruleID string) TradeOrder {
	return TradeOrder{Action: action, Source: SourceRule, RuleID: ruleID}
}

// NewAllocationOrder wraps an action as an initial-allocation fill, so
// setup buys are not counted as user trades.
func NewAllocationOrder(action OrderAction) TradeOrder {
	return TradeOrder{Action: action, Source: SourceAllocation}
}
