package backtest

import (
	"errors"
	"fmt"
	"math"

	"github.com/fxsim/lbgo/types"
)

// ErrMalformedInput marks fatal bar-stream problems: the run stops
// rather than produce misleading results.
var ErrMalformedInput = errors.New("malformed bar input")

// ValidateBars rejects empty input, non-monotonic timestamps and bars
// with impossible or missing OHLC values.
func ValidateBars(bars []types.Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: empty bar sequence", ErrMalformedInput)
	}
	for i, b := range bars {
		if b.Time.IsZero() {
			return fmt.Errorf("%w: bar %d has zero timestamp", ErrMalformedInput, i)
		}
		if i > 0 && b.Time.Before(bars[i-1].Time) {
			return fmt.Errorf("%w: bar %d timestamp %s precedes bar %d",
				ErrMalformedInput, i, b.Time.Format("2006-01-02T15:04:05Z"), i-1)
		}
		for _, v := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("%w: bar %d has invalid price", ErrMalformedInput, i)
			}
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: bar %d high %g below low %g", ErrMalformedInput, i, b.High, b.Low)
		}
	}
	return nil
}
