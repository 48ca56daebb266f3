// Package backtest replays an ordered bar sequence through the signal
// generator and the risk manager and derives performance statistics.
// One Engine serves one run; everything it touches is private state, so
// callers may run any number of engines in parallel on shared read-only
// bar slices.
package backtest

import (
	"time"

	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/logger"
	"github.com/fxsim/lbgo/risk"
	"github.com/fxsim/lbgo/signal"
	"github.com/fxsim/lbgo/trend"
	"github.com/fxsim/lbgo/types"
)

// Engine wires the triad together and owns the equity curve.
type Engine struct {
	cfg  config.Config
	sess config.Sessions
	gen  *signal.Generator
	rm   *risk.Manager
	log  logger.Logger
}

// NewEngine validates the configuration and builds the components.
// Contradictory parameters fail here, before any bar is processed.
func NewEngine(cfg config.Config, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sess, err := cfg.Sessions()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	var filter trend.Filter
	if cfg.UseTrendFilter {
		f, err := trend.NewHMAFilter(cfg.TrendMinBars, log)
		if err != nil {
			return nil, err
		}
		filter = f
	}
	gen, err := signal.New(cfg, filter, log)
	if err != nil {
		return nil, err
	}
	rm, err := risk.NewManager(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, sess: sess, gen: gen, rm: rm, log: log}, nil
}

// Run replays the bars once, in order. Deterministic for identical
// inputs and configuration.
func (e *Engine) Run(bars []types.Bar) (*Result, error) {
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}

	curve := make([]types.EquityPoint, 0, len(bars))
	peak := e.rm.Equity()
	var curDay time.Time
	var lastBar types.Bar

	for _, bar := range bars {
		day := signal.DateOf(bar.Time)
		if !day.Equal(curDay) {
			if !curDay.IsZero() {
				e.finalizeDay(curDay, lastBar)
			}
			curDay = day
			e.rm.StartDay()
		}

		// Manage open trades before looking for new entries.
		for _, t := range e.rm.OpenTrades() {
			e.rm.UpdateTrade(t, bar)
		}
		if e.cfg.UseTimeExit && config.MinuteOf(bar.Time) >= e.sess.SessionClose-e.cfg.ExitBeforeCloseMin {
			for _, t := range e.rm.OpenTrades() {
				e.rm.CloseTrade(t, bar.Close, bar.Time, types.ClosedByTimeout)
			}
		}

		e.gen.Observe(bar)
		if e.rm.OpenCount() == 0 {
			if sig := e.gen.TryGenerate(bar); sig != nil {
				lots := e.rm.SizeFor(*sig)
				// Rejections are non-fatal; the manager logs and counts them.
				_, _ = e.rm.OpenTrade(*sig, lots)
			}
		}

		eq := e.rm.Equity()
		if eq > peak {
			peak = eq
		}
		dd := 0.0
		if peak > 0 {
			dd = (peak - eq) / peak
		}
		curve = append(curve, types.EquityPoint{Time: bar.Time, Equity: eq, Drawdown: dd})
		lastBar = bar
	}

	e.finalizeDay(curDay, lastBar)

	res := newResult(e.cfg, e.rm.Closed(), curve)
	e.log.Info("run_complete",
		logger.Int("bars", len(bars)),
		logger.Int("trades", res.Summary.TotalTrades),
		logger.Float64("final_equity", res.FinalEquity),
	)
	return res, nil
}

// finalizeDay force-closes whatever is still open at the day's last bar
// and retires the day's signal state.
func (e *Engine) finalizeDay(day time.Time, last types.Bar) {
	for _, t := range e.rm.OpenTrades() {
		e.rm.CloseTrade(t, last.Close, last.Time, types.ClosedByTimeout)
	}
	e.gen.CloseDay(day)
}
