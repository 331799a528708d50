// Package models provides domain models for the market replay engine.
package models

// PricePoint represents one daily OHLCV bar.
type PricePoint struct {
	Date      string  `csv:"date" json:"date"` // YYYY-MM-DD
	Open      float64 `csv:"open" json:"open"`
	High      float64 `csv:"high" json:"high"`
	Low       float64 `csv:"low" json:"low"`
	Close     float64 `csv:"close" json:"close"`
	Volume    int64   `csv:"volume" json:"volume"`
	Projected bool    `csv:"-" json:"projected,omitempty"` // synthetic future bar
}

// PriceSeries is a chronological sequence of daily bars for one ticker.
type PriceSeries []PricePoint

// PriceDataMap maps ticker to its price series. All consumed series are
// expected to be aligned by date/index.
type PriceDataMap map[string]PriceSeries

// BenchmarkTicker is the preferred reference series for market-wide
// conditions and beta.
const BenchmarkTicker = "SPY"

// InstrumentKind classifies a held instrument.
type InstrumentKind string

const (
	InstrumentStock  InstrumentKind = "stock"
	InstrumentETF    InstrumentKind = "etf"
	InstrumentCrypto InstrumentKind = "crypto"
	InstrumentBond   InstrumentKind = "bond"
	InstrumentOption InstrumentKind = "option"
)

// OptionType represents the option right.
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// OptionStrategy tags how an option position was opened.
type OptionStrategy string

const (
	StrategyShortPut    OptionStrategy = "short_put"
	StrategyCoveredCall OptionStrategy = "covered_call"
)

// OptionConfig holds option-specific position metadata.
type OptionConfig struct {
	Underlying string         `json:"underlying"`
	Strategy   OptionStrategy `json:"strategy"`
	Type       OptionType     `json:"type"`
	Strike     float64        `json:"strike"`
	ExpiryDate string         `json:"expiry_date"` // YYYY-MM-DD
	Contracts  int            `json:"contracts"`   // 100-share contracts
}

// Short reports whether the strategy is a written (short) option.
func (c OptionConfig) Short() bool {
	return c.Strategy == StrategyShortPut || c.Strategy == StrategyCoveredCall
}

// ScenarioEvent is a calendar-dated narrative event, used only for display.
type ScenarioEvent struct {
	Date        string `json:"date"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Scenario describes a historical market period to replay.
type Scenario struct {
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Description  string          `json:"description"`
	Difficulty   string          `json:"difficulty"`
	RiskFreeRate float64         `json:"risk_free_rate"` // annualized decimal
	Events       []ScenarioEvent `json:"events"`
}

// Allocation is one leg of the initial portfolio setup.
type Allocation struct {
	Ticker string  `json:"ticker" mapstructure:"ticker"`
	Pct    float64 `json:"pct" mapstructure:"pct"` // 0-100
}
