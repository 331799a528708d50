package models

import "fmt"

// Position is a single held instrument.
//
// For simple instruments the ID equals the ticker. For options it is a
// synthetic composite of underlying, strike, expiry and open date so that
// several option positions on the same underlying can coexist.
type Position struct {
	ID           string         `json:"id"`
	Ticker       string         `json:"ticker"`
	Kind         InstrumentKind `json:"kind"`
	Quantity     float64        `json:"quantity"`
	EntryPrice   float64        `json:"entry_price"`
	EntryDate    string         `json:"entry_date"`
	CurrentPrice float64        `json:"current_price"`
	CurrentValue float64        `json:"current_value"`
	Option       *OptionConfig  `json:"option,omitempty"`
}

// IsOption reports whether the position is an option.
func (p Position) IsOption() bool {
	return p.Kind == InstrumentOption && p.Option != nil
}

// OptionPositionID builds the composite key for an option position.
func OptionPositionID(cfg OptionConfig, openDate string) string {
	return fmt.Sprintf("%s-%s-%.2f-%s-%s", cfg.Underlying, cfg.Type, cfg.Strike, cfg.ExpiryDate, openDate)
}

// Portfolio owns the positions and cash of one simulation run.
//
// Invariant: TotalValue == CashBalance + sum of position CurrentValue after
// every mutation. CashBalance is never negative.
type Portfolio struct {
	Positions     []Position `json:"positions"`
	CashBalance   float64    `json:"cash_balance"`
	TotalValue    float64    `json:"total_value"`
	StartingValue float64    `json:"starting_value"`
}

// Position returns the first position with the given ticker, if held.
func (p Portfolio) Position(ticker string) (Position, bool) {
	for _, pos := range p.Positions {
		if pos.Ticker == ticker {
			return pos, true
		}
	}
	return Position{}, false
}

// PositionByID returns the position with the given id, if held.
func (p Portfolio) PositionByID(id string) (Position, bool) {
	for _, pos := range p.Positions {
		if pos.ID == id {
			return pos, true
		}
	}
	return Position{}, false
}

// PositionsValue sums the current value of all positions. Short option
// positions contribute negative value.
func (p Portfolio) PositionsValue() float64 {
	var sum float64
	for _, pos := range p.Positions {
		sum += pos.CurrentValue
	}
	return sum
}

// Clone returns a deep copy so mutators never alias the caller's slice.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.Positions = make([]Position, len(p.Positions))
	for i, pos := range p.Positions {
		out.Positions[i] = pos
		if pos.Option != nil {
			cfg := *pos.Option
			out.Positions[i].Option = &cfg
		}
	}
	return out
}

// PositionSnapshot records one position's state at the end of a tick.
type PositionSnapshot struct {
	Ticker     string  `json:"ticker"`
	Value      float64 `json:"value"`
	Quantity   float64 `json:"quantity"`
	ClosePrice float64 `json:"close_price"`
	DayReturn  float64 `json:"day_return"` // % vs previous tick
	Projected  bool    `json:"projected"`
}

// PortfolioSnapshot is the immutable end-of-tick record. History is
// append-only; snapshots are never mutated after creation.
type PortfolioSnapshot struct {
	Date             string             `json:"date"`
	TotalValue       float64            `json:"total_value"`
	CashBalance      float64            `json:"cash_balance"`
	Positions        []PositionSnapshot `json:"positions"`
	DayReturn        float64            `json:"day_return"`        // % vs previous tick
	CumulativeReturn float64            `json:"cumulative_return"` // % vs starting value
	Projected        bool               `json:"projected"`
}
