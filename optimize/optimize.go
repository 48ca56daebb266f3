// Package optimize runs a parameter grid search. Every combination gets
// its own engine with entirely private state over the shared read-only
// bar slice, so combinations run in parallel without coordination.
package optimize

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/fxsim/lbgo/backtest"
	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/logger"
	"github.com/fxsim/lbgo/types"
)

// Metric selects what a grid search ranks by.
type Metric string

const (
	BySharpe       Metric = "sharpe"
	ByReturn       Metric = "return"
	ByProfitFactor Metric = "profit_factor"
)

// Grid lists the parameter values to sweep. Empty slices keep the base
// config's value for that parameter.
type Grid struct {
	BufferPips   []float64
	RiskReward   []float64
	MinRangePips []float64
	WindowHours  []int
}

// Expand produces one config per combination, base-first ordering.
func (g Grid) Expand(base config.Config) []config.Config {
	buffers := fallbackF(g.BufferPips, base.BreakoutBufferPips)
	rewards := fallbackF(g.RiskReward, base.RiskReward)
	minRanges := fallbackF(g.MinRangePips, base.MinRangePips)
	windows := fallbackI(g.WindowHours, base.TradingWindowHours)

	out := make([]config.Config, 0, len(buffers)*len(rewards)*len(minRanges)*len(windows))
	for _, b := range buffers {
		for _, r := range rewards {
			for _, mr := range minRanges {
				for _, w := range windows {
					cfg := base
					cfg.BreakoutBufferPips = b
					cfg.RiskReward = r
					cfg.MinRangePips = mr
					cfg.TradingWindowHours = w
					out = append(out, cfg)
				}
			}
		}
	}
	return out
}

func fallbackF(vs []float64, def float64) []float64 {
	if len(vs) == 0 {
		return []float64{def}
	}
	return vs
}

func fallbackI(vs []int, def int) []int {
	if len(vs) == 0 {
		return []int{def}
	}
	return vs
}

// Outcome pairs one combination with its run summary.
type Outcome struct {
	Config  config.Config
	Summary backtest.Summary
	Err     error
}

// Score is the outcome's value under m; undefined metrics rank last.
func (o Outcome) Score(m Metric) float64 {
	if o.Err != nil {
		return math.Inf(-1)
	}
	var v float64
	switch m {
	case ByReturn:
		v = o.Summary.ReturnPct
	case ByProfitFactor:
		v = o.Summary.ProfitFactor
	default:
		v = o.Summary.SharpeRatio
	}
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

// Run backtests every combination on up to workers goroutines and
// returns the outcomes sorted best-first by metric. The input bars are
// never mutated.
func Run(ctx context.Context, bars []types.Bar, combos []config.Config, metric Metric, workers int, log logger.Logger) ([]Outcome, error) {
	if len(combos) == 0 {
		return nil, fmt.Errorf("empty parameter grid")
	}
	if workers <= 0 {
		workers = 4
	}
	if workers > len(combos) {
		workers = len(combos)
	}
	if log == nil {
		log = logger.Nop()
	}

	outcomes := make([]Outcome, len(combos))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = runOne(bars, combos[i], log)
			}
		}()
	}

	for i := range combos {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	// Stable sort keeps grid order among ties, so results are
	// reproducible run to run.
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Score(metric) > outcomes[j].Score(metric)
	})
	return outcomes, nil
}

func runOne(bars []types.Bar, cfg config.Config, log logger.Logger) Outcome {
	eng, err := backtest.NewEngine(cfg, logger.Nop())
	if err != nil {
		return Outcome{Config: cfg, Err: err}
	}
	res, err := eng.Run(bars)
	if err != nil {
		log.Warn("optimize_run_failed", logger.Err(err))
		return Outcome{Config: cfg, Err: err}
	}
	return Outcome{Config: cfg, Summary: res.Summary}
}
