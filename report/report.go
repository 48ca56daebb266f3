// Package report renders run results for humans and exports the trade
// log. No plotting; the summary is plain text.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/fxsim/lbgo/backtest"
)

// WriteSummary prints the run summary in a fixed layout.
func WriteSummary(w io.Writer, res *backtest.Result) {
	s := res.Summary
	fmt.Fprintf(w, "Backtest summary: %s\n", res.Symbol)
	fmt.Fprintf(w, "%s\n", "============================================")
	fmt.Fprintf(w, "Total trades:        %d (W %d / L %d)\n", s.TotalTrades, s.Winners, s.Losers)
	fmt.Fprintf(w, "Win rate:            %.1f%%\n", s.WinRate*100)
	fmt.Fprintf(w, "Profit factor:       %s\n", ratio(s.ProfitFactor))
	fmt.Fprintf(w, "Gross profit/loss:   %.2f / -%.2f\n", s.GrossProfit, s.GrossLoss)
	fmt.Fprintf(w, "Avg win/loss:        %.2f / %.2f\n", s.AvgWin, s.AvgLoss)
	fmt.Fprintf(w, "Largest win/loss:    %.2f / %.2f\n", s.LargestWin, s.LargestLoss)
	fmt.Fprintf(w, "Net PnL:             %.2f (%.2f%%)\n", s.NetPnL, s.ReturnPct)
	fmt.Fprintf(w, "Final equity:        %.2f (start %.2f)\n", res.FinalEquity, res.InitialCapital)
	fmt.Fprintf(w, "Max drawdown:        %.2f%% (%.2f)\n", s.MaxDrawdown*100, s.MaxDrawdownAmount)
	fmt.Fprintf(w, "Sharpe ratio:        %s\n", ratio(s.SharpeRatio))
	fmt.Fprintf(w, "Sortino ratio:       %s\n", ratio(s.SortinoRatio))
	fmt.Fprintf(w, "Max consec. wins:    %d\n", s.MaxConsecWins)
	fmt.Fprintf(w, "Max consec. losses:  %d\n", s.MaxConsecLosses)
}

// ratio formats a metric that may carry an undefined/infinite sentinel.
func ratio(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	}
	return fmt.Sprintf("%.2f", v)
}
