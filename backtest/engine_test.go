package backtest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/source"
	"github.com/fxsim/lbgo/testutils"
	"github.com/fxsim/lbgo/types"
)

// testConfig strips execution costs and optional features so the bar
// scripts below produce exact numbers.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.CommissionPerLot = 0
	cfg.SlippagePips = 0
	cfg.UseTrailingStop = false
	cfg.UseTimeExit = false
	return cfg
}

// breakoutDay scripts one day: a 32-pip reference range, a long break at
// 08:05 and whatever bars follow.
func breakoutDay(day time.Time, tail ...types.Bar) []types.Bar {
	bars := testutils.RangeBars(day, 1, 1.1050, 1.1018)
	bars = append(bars,
		testutils.At(day, 7, 0, 1.1030),
		testutils.At(day, 8, 5, 1.1055),
	)
	return append(bars, tail...)
}

func TestRunFullWinningDay(t *testing.T) {
	cfg := testConfig()
	eng, err := NewEngine(cfg, testutils.NewMockLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	day := testutils.Day(2024, time.March, 4)
	// Entry 1.1055, stop 1.1018 (37 pips), target 1.1129. The 09:00 bar
	// tags the target.
	bars := breakoutDay(day,
		testutils.Bar(day, 9, 0, 1.1100, 1.1135, 1.1090, 1.1130),
		testutils.At(day, 10, 0, 1.1125),
	)

	res, err := eng.Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.TotalTrades != 1 || res.Summary.Winners != 1 {
		t.Fatalf("expected one winning trade, got %+v", res.Summary)
	}
	tr := res.Trades[0]
	if tr.Status != types.ClosedByTarget {
		t.Fatalf("expected target close, got %v", tr.Status)
	}
	if tr.SizeLots != 0.27 { // $100 risk / (37 pips * $10)
		t.Fatalf("expected 0.27 lots, got %v", tr.SizeLots)
	}
	// 74 pips * $10 * 0.27 lots.
	want := 10_000 + 74*10*0.27
	if got := res.FinalEquity; got < want-0.01 || got > want+0.01 {
		t.Fatalf("final equity %v, want ~%v", got, want)
	}
	if len(res.EquityCurve) != len(bars) {
		t.Fatalf("expected one equity point per bar, got %d", len(res.EquityCurve))
	}
	for i := 1; i < len(res.EquityCurve); i++ {
		if res.EquityCurve[i].Time.Before(res.EquityCurve[i-1].Time) {
			t.Fatalf("equity curve timestamps regress at %d", i)
		}
	}
}

func TestRunClosesOpenTradeAtDayBoundary(t *testing.T) {
	cfg := testConfig()
	eng, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	day := testutils.Day(2024, time.March, 4)
	next := day.AddDate(0, 0, 1)
	// The 09:00 bar touches neither stop nor target; the trade is still
	// open when the next day's first bar arrives.
	bars := breakoutDay(day,
		testutils.At(day, 9, 0, 1.1070),
	)
	bars = append(bars, testutils.At(next, 1, 0, 1.1071))

	res, err := eng.Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Summary.TotalTrades != 1 {
		t.Fatalf("expected one trade, got %d", res.Summary.TotalTrades)
	}
	tr := res.Trades[0]
	if tr.Status != types.ClosedByTimeout {
		t.Fatalf("expected timeout close at the day boundary, got %v", tr.Status)
	}
	if !tr.ExitTime.Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("expected exit at the prior day's last bar, got %v", tr.ExitTime)
	}
	if tr.ExitPrice != 1.1070 {
		t.Fatalf("expected exit at the last close, got %v", tr.ExitPrice)
	}
}

func TestRunTimeExitBeforeSessionClose(t *testing.T) {
	cfg := testConfig()
	cfg.UseTimeExit = true // exit 30 min before the 16:00 close
	eng, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	day := testutils.Day(2024, time.March, 4)
	bars := breakoutDay(day,
		testutils.At(day, 12, 0, 1.1070),
		testutils.At(day, 15, 30, 1.1065),
	)

	res, err := eng.Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	tr := res.Trades[0]
	if tr.Status != types.ClosedByTimeout {
		t.Fatalf("expected timeout close, got %v", tr.Status)
	}
	if !tr.ExitTime.Equal(day.Add(15*time.Hour + 30*time.Minute)) {
		t.Fatalf("expected 15:30 exit, got %v", tr.ExitTime)
	}
	if tr.ExitPrice != 1.1065 {
		t.Fatalf("expected exit at that bar's close, got %v", tr.ExitPrice)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	src := &source.Synthetic{
		Start:      testutils.Day(2024, time.January, 1),
		Count:      3000,
		Interval:   5 * time.Minute,
		StartPrice: 1.1000,
		Seed:       7,
	}
	bars, err := src.Bars(context.Background())
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}

	cfg := config.Default()
	run := func() *Result {
		eng, err := NewEngine(cfg, nil)
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		res, err := eng.Run(bars)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return res
	}
	a, b := run(), run()

	if a.FinalEquity != b.FinalEquity {
		t.Fatalf("final equity differs: %v vs %v", a.FinalEquity, b.FinalEquity)
	}
	if !reflect.DeepEqual(a.Trades, b.Trades) {
		t.Fatal("trade lists differ between identical runs")
	}
	if !reflect.DeepEqual(a.EquityCurve, b.EquityCurve) {
		t.Fatal("equity curves differ between identical runs")
	}
}

func TestRunRejectsMalformedBars(t *testing.T) {
	eng, err := NewEngine(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	day := testutils.Day(2024, time.March, 4)

	cases := map[string][]types.Bar{
		"empty": {},
		"out of order": {
			testutils.At(day, 2, 0, 1.1),
			testutils.At(day, 1, 0, 1.1),
		},
		"non-positive price": {
			testutils.Bar(day, 1, 0, 1.1, 1.1, -1, 1.1),
		},
		"high below low": {
			testutils.Bar(day, 1, 0, 1.1, 1.0, 1.2, 1.1),
		},
		"zero timestamp": {
			{Open: 1.1, High: 1.1, Low: 1.1, Close: 1.1},
		},
	}
	for name, bars := range cases {
		if _, err := eng.Run(bars); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("%s: expected ErrMalformedInput, got %v", name, err)
		}
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.RiskReward = -1
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Fatal("expected config validation to fail")
	}
}
