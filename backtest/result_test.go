package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/fxsim/lbgo/testutils"
	"github.com/fxsim/lbgo/types"
)

func trades(pnls ...float64) []types.Trade {
	out := make([]types.Trade, len(pnls))
	for i, p := range pnls {
		out[i] = types.Trade{PnL: p}
	}
	return out
}

func curve(equities ...float64) []types.EquityPoint {
	day := testutils.Day(2024, time.March, 4)
	out := make([]types.EquityPoint, len(equities))
	for i, eq := range equities {
		out[i] = types.EquityPoint{Time: day.Add(time.Duration(i) * time.Hour), Equity: eq}
	}
	return out
}

func TestSummarizeBasicCounts(t *testing.T) {
	s := Summarize(trades(100, -50, 200, -25), nil, 10_000, 252)
	if s.TotalTrades != 4 || s.Winners != 2 || s.Losers != 2 {
		t.Fatalf("counts: %+v", s)
	}
	if s.WinRate != 0.5 {
		t.Fatalf("win rate %v", s.WinRate)
	}
	if s.GrossProfit != 300 || s.GrossLoss != 75 {
		t.Fatalf("gross: profit %v loss %v", s.GrossProfit, s.GrossLoss)
	}
	if s.ProfitFactor != 4 {
		t.Fatalf("profit factor %v", s.ProfitFactor)
	}
	if s.NetPnL != 225 || s.ReturnPct != 2.25 {
		t.Fatalf("net %v return %v", s.NetPnL, s.ReturnPct)
	}
	if s.AvgWin != 150 || s.AvgLoss != -37.5 {
		t.Fatalf("avg win %v avg loss %v", s.AvgWin, s.AvgLoss)
	}
	if s.LargestWin != 200 || s.LargestLoss != -50 {
		t.Fatalf("largest win %v loss %v", s.LargestWin, s.LargestLoss)
	}
}

func TestSummarizeZeroPnLCountsAsLoss(t *testing.T) {
	s := Summarize(trades(0, 100), nil, 10_000, 252)
	if s.Winners != 1 || s.Losers != 1 {
		t.Fatalf("a zero-PnL trade must count as a loss: %+v", s)
	}
	if s.WinRate != 0.5 {
		t.Fatalf("win rate %v", s.WinRate)
	}
}

func TestSummarizeProfitFactorSentinels(t *testing.T) {
	if s := Summarize(trades(100, 50), nil, 10_000, 252); !math.IsInf(s.ProfitFactor, 1) {
		t.Fatalf("all-winner profit factor should be +Inf, got %v", s.ProfitFactor)
	}
	if s := Summarize(nil, nil, 10_000, 252); s.ProfitFactor != 0 {
		t.Fatalf("no-trade profit factor should be 0, got %v", s.ProfitFactor)
	}
	if s := Summarize(trades(-100), nil, 10_000, 252); s.ProfitFactor != 0 {
		t.Fatalf("all-loser profit factor should be 0, got %v", s.ProfitFactor)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := Summarize(nil, nil, 10_000, 252)
	if s.TotalTrades != 0 || s.WinRate != 0 || s.NetPnL != 0 {
		t.Fatalf("empty summary not zeroed: %+v", s)
	}
	if !math.IsNaN(s.SharpeRatio) || !math.IsNaN(s.SortinoRatio) {
		t.Fatalf("undefined ratios must be NaN: sharpe %v sortino %v",
			s.SharpeRatio, s.SortinoRatio)
	}
}

func TestSummarizeAggregatesAreOrderIndependent(t *testing.T) {
	fwd := Summarize(trades(100, -50, 200, -25), nil, 10_000, 252)
	rev := Summarize(trades(-25, 200, -50, 100), nil, 10_000, 252)
	if fwd.WinRate != rev.WinRate || fwd.ProfitFactor != rev.ProfitFactor || fwd.NetPnL != rev.NetPnL {
		t.Fatalf("aggregates changed under reordering:\n%+v\n%+v", fwd, rev)
	}
}

func TestStreaks(t *testing.T) {
	// W W L W L L L
	wins, losses := streaks(trades(10, 10, -10, 10, -10, -10, -10))
	if wins != 2 {
		t.Fatalf("max win streak %d, want 2", wins)
	}
	if losses != 3 {
		t.Fatalf("max loss streak %d, want 3", losses)
	}
}

func TestMaxDrawdown(t *testing.T) {
	frac, amount := maxDrawdown(curve(10_000, 10_500, 9_975, 10_200))
	if amount != 525 {
		t.Fatalf("drawdown amount %v, want 525", amount)
	}
	if want := 525.0 / 10_500; frac != want {
		t.Fatalf("drawdown fraction %v, want %v", frac, want)
	}
}

func TestRiskAdjustedOnFlatCurveIsNaN(t *testing.T) {
	s := Summarize(nil, curve(10_000, 10_000, 10_000, 10_000), 10_000, 252)
	if !math.IsNaN(s.SharpeRatio) {
		t.Fatalf("flat-curve sharpe should be NaN, got %v", s.SharpeRatio)
	}
	if !math.IsNaN(s.SortinoRatio) {
		t.Fatalf("flat-curve sortino should be NaN, got %v", s.SortinoRatio)
	}
}

func TestRiskAdjustedDefined(t *testing.T) {
	// Mixed up and down bars with two distinct downside returns, so both
	// deviations are strictly positive.
	s := Summarize(nil, curve(10_000, 10_100, 10_000, 10_200, 10_050, 10_150), 10_000, 252)
	if math.IsNaN(s.SharpeRatio) {
		t.Fatal("expected a defined sharpe ratio")
	}
	if math.IsNaN(s.SortinoRatio) {
		t.Fatal("expected a defined sortino ratio")
	}
	if s.SharpeRatio <= 0 {
		t.Fatalf("net-up curve should have positive sharpe, got %v", s.SharpeRatio)
	}
}
