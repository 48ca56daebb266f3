// lbgo backtests a session-range breakout strategy over historical OHLC
// bars and searches its parameter space.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fxsim/lbgo/backtest"
	"github.com/fxsim/lbgo/config"
	"github.com/fxsim/lbgo/logger"
	"github.com/fxsim/lbgo/optimize"
	"github.com/fxsim/lbgo/report"
	"github.com/fxsim/lbgo/source"
	"github.com/fxsim/lbgo/types"
)

var (
	flagConfig  string
	flagLogFile string

	flagCSV       string
	flagSQLite    string
	flagSynthetic int
	flagClean     bool

	flagExport string

	flagMetric  string
	flagWorkers int
	flagBuffers []float64
	flagRewards []float64
	flagRanges  []float64
	flagWindows []int
)

func main() {
	root := &cobra.Command{
		Use:           "lbgo",
		Short:         "Session-range breakout backtester",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (yaml/toml/json)")
	root.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "rotating log file (default: stderr)")

	root.AddCommand(runCmd(), optimizeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest one parameter set and print the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			bars, err := loadBars(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			eng, err := backtest.NewEngine(cfg, log)
			if err != nil {
				return err
			}
			res, err := eng.Run(bars)
			if err != nil {
				return err
			}
			report.WriteSummary(cmd.OutOrStdout(), res)
			if flagExport != "" {
				if err := report.ExportTradesCSV(flagExport, res.Trades); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nTrade log written to %s\n", flagExport)
			}
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringVar(&flagExport, "export", "", "write the closed-trade log to this CSV file")
	return cmd
}

func optimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Grid-search strategy parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			bars, err := loadBars(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			grid := optimize.Grid{
				BufferPips:   flagBuffers,
				RiskReward:   flagRewards,
				MinRangePips: flagRanges,
				WindowHours:  flagWindows,
			}
			combos := grid.Expand(cfg)
			outcomes, err := optimize.Run(cmd.Context(), bars, combos,
				optimize.Metric(flagMetric), flagWorkers, log)
			if err != nil {
				return err
			}

			show := len(outcomes)
			if show > 10 {
				show = 10
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d combinations, top %d by %s:\n\n", len(outcomes), show, flagMetric)
			for i := 0; i < show; i++ {
				o := outcomes[i]
				if o.Err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d. failed: %v\n", i+1, o.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"%2d. buffer=%.1f rr=%.1f min_range=%.0f window=%dh  trades=%d win=%.0f%% sharpe=%.2f return=%.2f%%\n",
					i+1, o.Config.BreakoutBufferPips, o.Config.RiskReward,
					o.Config.MinRangePips, o.Config.TradingWindowHours,
					o.Summary.TotalTrades, o.Summary.WinRate*100,
					o.Summary.SharpeRatio, o.Summary.ReturnPct)
			}
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().StringVar(&flagMetric, "metric", string(optimize.BySharpe), "ranking metric: sharpe|return|profit_factor")
	cmd.Flags().IntVar(&flagWorkers, "workers", 4, "parallel backtest workers")
	cmd.Flags().Float64SliceVar(&flagBuffers, "buffers", nil, "breakout buffer values (pips)")
	cmd.Flags().Float64SliceVar(&flagRewards, "rewards", nil, "risk:reward values")
	cmd.Flags().Float64SliceVar(&flagRanges, "min-ranges", nil, "minimum range values (pips)")
	cmd.Flags().IntSliceVar(&flagWindows, "windows", nil, "trading window hours")
	return cmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCSV, "csv", "", "CSV bar file (timestamp,open,high,low,close[,volume])")
	cmd.Flags().StringVar(&flagSQLite, "sqlite", "", "SQLite bar store path")
	cmd.Flags().IntVar(&flagSynthetic, "synthetic", 0, "generate N synthetic bars instead of loading")
	cmd.Flags().BoolVar(&flagClean, "clean", true, "drop duplicate/weekend/inconsistent input bars")
}

func setup() (config.Config, logger.Logger, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return cfg, nil, err
		}
	}
	var log logger.Logger
	if flagLogFile != "" {
		log = logger.NewFileLogger(logger.FileConfig{Path: flagLogFile})
	} else {
		var err error
		if log, err = logger.NewZapLogger(); err != nil {
			return cfg, nil, err
		}
	}
	return cfg, log, nil
}

func loadBars(ctx context.Context, cfg config.Config) ([]types.Bar, error) {
	var src source.BarSource
	switch {
	case flagSynthetic > 0:
		src = &source.Synthetic{
			Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Count:      flagSynthetic,
			Interval:   5 * time.Minute,
			StartPrice: 1.1000,
			Seed:       42,
		}
	case flagCSV != "":
		src = &source.CSVSource{Path: flagCSV, CleanInput: flagClean}
	case flagSQLite != "":
		store, err := source.OpenSQLite(flagSQLite)
		if err != nil {
			return nil, err
		}
		src = &source.SQLiteSource{Store: store, Symbol: cfg.Symbol}
	default:
		return nil, fmt.Errorf("one of --csv, --sqlite or --synthetic is required")
	}
	bars, err := src.Bars(ctx)
	if err != nil {
		return nil, err
	}
	if flagClean && flagCSV == "" {
		bars = source.Clean(bars)
	}
	return bars, nil
}
