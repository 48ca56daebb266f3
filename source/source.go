// Package source holds the bar-source adapters. The core never does
// I/O; anything that can yield an ordered bar sequence lives here.
package source

import (
	"context"
	"time"

	"github.com/fxsim/lbgo/types"
)

// BarSource yields a finite, chronologically ordered bar sequence.
type BarSource interface {
	Bars(ctx context.Context) ([]types.Bar, error)
}

// Clean drops bars a strict engine would refuse: duplicate timestamps
// (first wins), weekend bars, non-positive prices and OHLC-inconsistent
// rows. Input order is preserved. Cleaning is opt-in; the engine itself
// stays fail-fast on whatever it is handed.
func Clean(bars []types.Bar) []types.Bar {
	out := make([]types.Bar, 0, len(bars))
	for i, b := range bars {
		if i > 0 && b.Time.Equal(bars[i-1].Time) {
			continue
		}
		switch b.Time.UTC().Weekday() {
		case time.Saturday, time.Sunday: // forex markets closed
			continue
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			continue
		}
		if b.High < b.Low || b.High < b.Open || b.High < b.Close ||
			b.Low > b.Open || b.Low > b.Close {
			continue
		}
		out = append(out, b)
	}
	return out
}
