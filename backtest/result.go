package backtest

import (
	"math"

	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/types"
)

// Result is the full outcome of one run: the closed-trade list, the
// equity curve, and the derived summary metrics.
type Result struct {
	Symbol         string
	InitialCapital float64
	FinalEquity    float64
	Trades         []types.Trade
	EquityCurve    []types.EquityPoint
	Summary        Summary
}

// Summary holds the aggregate performance metrics. ProfitFactor is +Inf
// when there are profits and no losses; Sharpe and Sortino are NaN when
// the corresponding deviation is zero or there are too few returns.
type Summary struct {
	TotalTrades int
	Winners     int
	Losers      int
	// WinRate is wins over total closed trades, as a fraction; 0 with
	// no trades.
	WinRate float64

	GrossProfit float64 // sum of winning PnL
	GrossLoss   float64 // magnitude of losing PnL
	NetPnL      float64
	ReturnPct   float64

	ProfitFactor float64
	AvgWin       float64
	AvgLoss      float64
	LargestWin   float64
	LargestLoss  float64

	// MaxDrawdown is the largest peak-to-trough decline, as a fraction
	// of the peak; MaxDrawdownAmount is the same in account currency.
	MaxDrawdown       float64
	MaxDrawdownAmount float64

	SharpeRatio  float64
	SortinoRatio float64

	MaxConsecWins   int
	MaxConsecLosses int
}

func newResult(cfg config.Config, trades []types.Trade, curve []types.EquityPoint) *Result {
	final := cfg.InitialCapital
	if len(curve) > 0 {
		final = curve[len(curve)-1].Equity
	}
	return &Result{
		Symbol:         cfg.Symbol,
		InitialCapital: cfg.InitialCapital,
		FinalEquity:    final,
		Trades:         trades,
		EquityCurve:    curve,
		Summary:        Summarize(trades, curve, cfg.InitialCapital, cfg.PeriodsPerYear),
	}
}

// Summarize derives the metrics from closed trades and the equity
// curve. Trade aggregations are order-independent; the streak counters
// assume chronological order, which the engine guarantees.
func Summarize(trades []types.Trade, curve []types.EquityPoint, initialCapital, periodsPerYear float64) Summary {
	var s Summary
	s.SharpeRatio = math.NaN()
	s.SortinoRatio = math.NaN()

	s.TotalTrades = len(trades)
	for _, t := range trades {
		s.NetPnL += t.PnL
		if t.PnL > 0 {
			s.Winners++
			s.GrossProfit += t.PnL
			if t.PnL > s.LargestWin {
				s.LargestWin = t.PnL
			}
		} else {
			s.Losers++
			s.GrossLoss += -t.PnL
			if t.PnL < s.LargestLoss {
				s.LargestLoss = t.PnL
			}
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Winners) / float64(s.TotalTrades)
	}
	if s.Winners > 0 {
		s.AvgWin = s.GrossProfit / float64(s.Winners)
	}
	if s.Losers > 0 {
		s.AvgLoss = -s.GrossLoss / float64(s.Losers)
	}
	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	case s.GrossProfit > 0:
		s.ProfitFactor = math.Inf(1)
	default:
		s.ProfitFactor = 0
	}
	if initialCapital > 0 {
		s.ReturnPct = s.NetPnL / initialCapital * 100
	}

	s.MaxConsecWins, s.MaxConsecLosses = streaks(trades)
	s.MaxDrawdown, s.MaxDrawdownAmount = maxDrawdown(curve)
	s.SharpeRatio, s.SortinoRatio = riskAdjusted(curve, periodsPerYear)
	return s
}

// streaks scans the closed trades once, in order.
func streaks(trades []types.Trade) (maxWins, maxLosses int) {
	var curWins, curLosses int
	for _, t := range trades {
		if t.PnL > 0 {
			curWins++
			curLosses = 0
			if curWins > maxWins {
				maxWins = curWins
			}
		} else {
			curLosses++
			curWins = 0
			if curLosses > maxLosses {
				maxLosses = curLosses
			}
		}
	}
	return maxWins, maxLosses
}

func maxDrawdown(curve []types.EquityPoint) (frac, amount float64) {
	var peak float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			if d := (peak - p.Equity) / peak; d > frac {
				frac = d
			}
		}
		if a := peak - p.Equity; a > amount {
			amount = a
		}
	}
	return frac, amount
}

// riskAdjusted annualizes Sharpe and Sortino from per-bar equity
// returns. Both come back NaN when undefined.
func riskAdjusted(curve []types.EquityPoint, periodsPerYear float64) (sharpe, sortino float64) {
	sharpe, sortino = math.NaN(), math.NaN()
	if len(curve) < 3 {
		return sharpe, sortino
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			return sharpe, sortino
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	std := sampleStd(returns, mean)
	ann := math.Sqrt(periodsPerYear)
	if std > 0 {
		sharpe = ann * mean / std
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) >= 2 {
		dMean := 0.0
		for _, r := range downside {
			dMean += r
		}
		dMean /= float64(len(downside))
		if dStd := sampleStd(downside, dMean); dStd > 0 {
			sortino = ann * mean / dStd
		}
	}
	return sharpe, sortino
}

func sampleStd(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
