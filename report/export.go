package report

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/fxsim/lbgo/types"
)

type tradeRow struct {
	Direction   string  `csv:"direction"`
	EntryTime   string  `csv:"entry_time"`
	ExitTime    string  `csv:"exit_time"`
	EntryPrice  float64 `csv:"entry_price"`
	ExitPrice   float64 `csv:"exit_price"`
	Stop        float64 `csv:"stop"`
	Target      float64 `csv:"target"`
	SizeLots    float64 `csv:"size_lots"`
	PnL         float64 `csv:"pnl"`
	ExitReason  string  `csv:"exit_reason"`
	DurationMin float64 `csv:"duration_min"`
}

// ExportTradesCSV writes the closed-trade log to path.
func ExportTradesCSV(path string, trades []types.Trade) error {
	rows := make([]tradeRow, len(trades))
	for i, t := range trades {
		rows[i] = tradeRow{
			Direction:   t.Direction.String(),
			EntryTime:   t.EntryTime.UTC().Format(time.RFC3339),
			ExitTime:    t.ExitTime.UTC().Format(time.RFC3339),
			EntryPrice:  t.EntryPrice,
			ExitPrice:   t.ExitPrice,
			Stop:        t.Stop,
			Target:      t.Target,
			SizeLots:    t.SizeLots,
			PnL:         t.PnL,
			ExitReason:  t.Status.String(),
			DurationMin: t.Duration().Minutes(),
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
