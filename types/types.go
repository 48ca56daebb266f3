package types

import "time"

// Direction of a signal or trade.
type Direction int

const (
	// None is the zero direction, used by filters while undecided.
	None  Direction = 0
	Long  Direction = 1
	Short Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	}
	return "NONE"
}

// Sign returns the PnL factor: +1 for long, -1 for short.
func (d Direction) Sign() float64 { return float64(d) }

// Bar is a single OHLC candle. Immutable once ingested.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SessionRange is the reference band computed from the range-building
// window of one calendar day. Immutable after creation.
type SessionRange struct {
	Date time.Time // midnight UTC of the trading day
	High float64
	Low  float64
	// WidthPips is High-Low expressed in pips.
	WidthPips float64
	// Valid is false when WidthPips falls outside the configured bounds.
	// An invalid range never produces a signal for its day.
	Valid bool
}

func (r SessionRange) Midpoint() float64 { return (r.High + r.Low) / 2 }

// Signal is a breakout trade candidate. At most one is created per day.
type Signal struct {
	Direction  Direction
	Time       time.Time
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Range      SessionRange
}
