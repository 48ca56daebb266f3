// Package signal implements the per-day breakout detector. Each calendar
// day runs through an explicit state machine:
//
//	AwaitingRangeStart -> BuildingRange -> AwaitingBreakout|RangeInvalid
//	AwaitingBreakout   -> BreakoutTraded | DayClosed
//
// At most one Signal is emitted per day. On a bar whose close clears both
// boundaries the long side is evaluated first; this tie-break is fixed
// and deterministic.
package signal

import (
	"time"

	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/logger"
	"github.com/fxsim/lbgo/metrics"
	"github.com/fxsim/lbgo/trend"
	"github.com/fxsim/lbgo/types"
)

// State of one trading day's detector.
type State int

const (
	AwaitingRangeStart State = iota
	BuildingRange
	RangeInvalid
	AwaitingBreakout
	BreakoutTraded
	DayClosed
)

func (s State) String() string {
	switch s {
	case AwaitingRangeStart:
		return "awaiting_range_start"
	case BuildingRange:
		return "building_range"
	case RangeInvalid:
		return "range_invalid"
	case AwaitingBreakout:
		return "awaiting_breakout"
	case BreakoutTraded:
		return "breakout_traded"
	case DayClosed:
		return "day_closed"
	}
	return "unknown"
}

type dayState struct {
	state State
	high  float64
	low   float64
	rng   types.SessionRange
}

// Generator owns the per-day state machines, keyed by calendar date.
type Generator struct {
	cfg    config.Config
	sess   config.Sessions
	filter trend.Filter
	log    logger.Logger
	days   map[time.Time]*dayState
}

// New validates the config and builds a generator. filter may be nil.
func New(cfg config.Config, filter trend.Filter, log logger.Logger) (*Generator, error) {
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
	return &Generator{
		cfg:    cfg,
		sess:   sess,
		filter: filter,
		log:    log,
		days:   make(map[time.Time]*dayState),
	}, nil
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Observe advances the day's state machine with one bar and feeds the
// trend filter. Call once per bar, before TryGenerate.
func (g *Generator) Observe(bar types.Bar) {
	if g.filter != nil {
		g.filter.Observe(bar)
	}

	day := DateOf(bar.Time)
	ds := g.days[day]
	if ds == nil {
		ds = &dayState{state: AwaitingRangeStart}
		g.days[day] = ds
	}
	m := config.MinuteOf(bar.Time)

	switch ds.state {
	case AwaitingRangeStart:
		switch {
		case m >= g.sess.RangeStart && m < g.sess.RangeEnd:
			ds.state = BuildingRange
			ds.high = bar.High
			ds.low = bar.Low
		case m >= g.sess.RangeEnd:
			// No bars fell inside the range window; nothing to break out of.
			ds.state = RangeInvalid
			metrics.RangesInvalid.Inc()
			g.log.Warn("range_missing", logger.Time("day", day))
		}
	case BuildingRange:
		if m < g.sess.RangeEnd {
			if bar.High > ds.high {
				ds.high = bar.High
			}
			if bar.Low < ds.low {
				ds.low = bar.Low
			}
			return
		}
		g.finalizeRange(day, ds)
	case AwaitingBreakout:
		if m > g.sess.WindowEnd {
			ds.state = DayClosed
		}
	}
}

func (g *Generator) finalizeRange(day time.Time, ds *dayState) {
	width := (ds.high - ds.low) / g.cfg.PipSize
	rng := types.SessionRange{
		Date:      day,
		High:      ds.high,
		Low:       ds.low,
		WidthPips: width,
		Valid:     width >= g.cfg.MinRangePips && width <= g.cfg.MaxRangePips,
	}
	ds.rng = rng
	if !rng.Valid {
		ds.state = RangeInvalid
		metrics.RangesInvalid.Inc()
		g.log.Info("range_invalid",
			logger.Time("day", day),
			logger.Float64("width_pips", width),
		)
		return
	}
	ds.state = AwaitingBreakout
	g.log.Info("range_ready",
		logger.Time("day", day),
		logger.Float64("high", rng.High),
		logger.Float64("low", rng.Low),
		logger.Float64("width_pips", width),
	)
}

// TryGenerate checks the bar for a qualifying breakout and returns the
// day's signal, or nil. Call after Observe on the same bar.
func (g *Generator) TryGenerate(bar types.Bar) *types.Signal {
	day := DateOf(bar.Time)
	ds := g.days[day]
	if ds == nil || ds.state != AwaitingBreakout {
		return nil
	}
	m := config.MinuteOf(bar.Time)
	if m < g.sess.SessionOpen || m > g.sess.WindowEnd {
		return nil
	}

	buffer := g.cfg.BreakoutBufferPips * g.cfg.PipSize
	var dir types.Direction
	switch {
	case bar.Close >= ds.rng.High+buffer:
		dir = types.Long
	case bar.Close <= ds.rng.Low-buffer:
		dir = types.Short
	default:
		return nil
	}

	if g.cfg.UseTrendFilter && !trend.Allows(g.filter, dir) {
		// Candidate discarded; the day keeps waiting for an aligned break.
		g.log.Info("breakout_against_trend",
			logger.Time("ts", bar.Time),
			logger.String("direction", dir.String()),
		)
		return nil
	}

	entry := bar.Close
	var stop float64
	if dir == types.Long {
		stop = ds.rng.Low
	} else {
		stop = ds.rng.High
	}
	risk := (entry - stop) * dir.Sign()
	if risk <= 0 {
		return nil
	}
	target := entry + risk*g.cfg.RiskReward*dir.Sign()

	rewardPips := (target - entry) * dir.Sign() / g.cfg.PipSize
	riskPips := risk / g.cfg.PipSize
	if rewardPips/riskPips < g.cfg.MinRiskReward {
		return nil
	}

	ds.state = BreakoutTraded
	sig := &types.Signal{
		Direction:  dir,
		Time:       bar.Time,
		Entry:      entry,
		StopLoss:   stop,
		TakeProfit: target,
		Range:      ds.rng,
	}
	metrics.SignalsGenerated.WithLabelValues(dir.String()).Inc()
	g.log.Info("signal_generated",
		logger.Time("ts", bar.Time),
		logger.String("direction", dir.String()),
		logger.Float64("entry", entry),
		logger.Float64("stop", stop),
		logger.Float64("target", target),
	)
	return sig
}

// StateOf exposes the day's state, mainly for tests and the engine's
// day bookkeeping.
func (g *Generator) StateOf(day time.Time) State {
	if ds := g.days[DateOf(day)]; ds != nil {
		return ds.state
	}
	return AwaitingRangeStart
}

// RangeOf returns the day's computed range, if it was finalized.
func (g *Generator) RangeOf(day time.Time) (types.SessionRange, bool) {
	ds := g.days[DateOf(day)]
	if ds == nil || (ds.rng == types.SessionRange{}) {
		return types.SessionRange{}, false
	}
	return ds.rng, true
}

// CloseDay marks the day done and discards older day state.
func (g *Generator) CloseDay(day time.Time) {
	day = DateOf(day)
	if ds := g.days[day]; ds != nil {
		ds.state = DayClosed
	}
	for d := range g.days {
		if d.Before(day) {
			delete(g.days, d)
		}
	}
}
