package types

import "time"

// TradeStatus is the lifecycle state of a trade.
type TradeStatus int

const (
	Open TradeStatus = iota
	ClosedByStop
	ClosedByTarget
	ClosedByTimeout
)

func (s TradeStatus) String() string {
	switch s {
	case Open:
		return "OPEN"
	case ClosedByStop:
		return "SL"
	case ClosedByTarget:
		return "TP"
	case ClosedByTimeout:
		return "TIMEOUT"
	}
	return "UNKNOWN"
}

// Closed reports whether the status is terminal.
func (s TradeStatus) Closed() bool { return s != Open }

// Trade is a position opened from a Signal. The stop may move in the
// trade's favor while Open; everything is frozen once the trade closes.
type Trade struct {
	Direction  Direction
	SizeLots   float64
	EntryTime  time.Time
	EntryPrice float64
	// Stop is mutable under trailing logic, never against the position.
	Stop       float64
	Target     float64
	Status     TradeStatus
	ExitTime   time.Time
	ExitPrice  float64
	// PnL is the realized net profit/loss after costs; zero while Open.
	PnL    float64
	Signal Signal
}

// RiskPips is the initial stop distance in pips, given the pip size.
func (t *Trade) RiskPips(pipSize float64) float64 {
	if pipSize <= 0 {
		return 0
	}
	d := t.EntryPrice - t.Signal.StopLoss
	if d < 0 {
		d = -d
	}
	return d / pipSize
}

// Duration is the time the trade was held; zero while Open.
func (t *Trade) Duration() time.Duration {
	if !t.Status.Closed() {
		return 0
	}
	return t.ExitTime.Sub(t.EntryTime)
}

// EquityPoint is one sample of the equity curve, appended once per bar.
type EquityPoint struct {
	Time     time.Time
	Equity   float64
	Drawdown float64 // decline from the running peak, as a fraction
}
