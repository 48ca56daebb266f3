// Package trend provides the optional direction filter applied to
// breakout candidates: a signal against the prevailing trend is
// discarded without consuming the day's single attempt.
package trend

import (
	"github.com/evdnx/goti"

	"github.com/fxsim/lbgo/logger"
	"github.com/fxsim/lbgo/types"
)

// Filter reports the prevailing market direction. Implementations see
// every bar of the run, including range-building bars.
type Filter interface {
	Observe(bar types.Bar)
	// Direction returns Long, Short, or None while undecided.
	Direction() types.Direction
}

// Allows reports whether a breakout in direction d may proceed under f.
// A nil filter, or one still warming up, allows everything.
func Allows(f Filter, d types.Direction) bool {
	if f == nil {
		return true
	}
	cur := f.Direction()
	return cur == types.None || cur == d
}

// HMAFilter derives direction from the GoTI Hull moving average
// crossovers, falling back to the slope and bias of a rolling close
// window while the suite has no opinion.
type HMAFilter struct {
	suite   *goti.IndicatorSuite
	win     *window
	minBars int
	last    types.Direction
	log     logger.Logger
}

// NewHMAFilter builds the indicator suite. minBars is the warm-up before
// Direction reports anything but None.
func NewHMAFilter(minBars int, log logger.Logger) (*HMAFilter, error) {
	if log == nil {
		log = logger.Nop()
	}
	suite, err := goti.NewIndicatorSuiteWithConfig(goti.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &HMAFilter{
		suite:   suite,
		win:     newWindow(64),
		minBars: minBars,
		log:     log,
	}, nil
}

func (f *HMAFilter) Observe(bar types.Bar) {
	vol := bar.Volume
	if vol <= 0 {
		vol = 1
	}
	if err := f.suite.Add(bar.High, bar.Low, bar.Close, vol); err != nil {
		f.log.Warn("trend_suite_add_error", logger.Err(err))
		return
	}
	f.win.Add(bar.Close)

	if ok, err := f.suite.GetHMA().IsBullishCrossover(); err == nil && ok {
		f.last = types.Long
		return
	}
	if ok, err := f.suite.GetHMA().IsBearishCrossover(); err == nil && ok {
		f.last = types.Short
		return
	}
	// No crossover this bar: let a decisive window override a stale
	// crossover direction, otherwise keep it.
	bias := f.win.Bias()
	slope := f.win.Slope()
	switch {
	case bias > 0 && slope > 0:
		f.last = types.Long
	case bias < 0 && slope < 0:
		f.last = types.Short
	}
}

func (f *HMAFilter) Direction() types.Direction {
	if f.win.Len() < f.minBars {
		return types.None
	}
	return f.last
}
