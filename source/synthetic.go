package source

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/fxsim/lbgo/types"
)

// Synthetic generates a seeded random-walk OHLC series, weekdays only.
// Identical parameters always yield the identical sequence, which keeps
// demo and optimization runs reproducible.
type Synthetic struct {
	Start      time.Time
	Count      int
	Interval   time.Duration
	StartPrice float64
	Seed       int64
}

func (s *Synthetic) Bars(ctx context.Context) ([]types.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	price := s.StartPrice
	if price <= 0 {
		price = 1.1000
	}
	rng := rand.New(rand.NewSource(s.Seed))

	bars := make([]types.Bar, 0, s.Count)
	t := s.Start.UTC()
	for len(bars) < s.Count {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t = t.Add(interval)
			continue
		}
		open := price
		price += rng.NormFloat64() * 0.0001 * price
		vol := math.Abs(rng.NormFloat64() * 0.0002 * price)
		high := max(open, price) + math.Abs(rng.NormFloat64()*vol)
		low := min(open, price) - math.Abs(rng.NormFloat64()*vol)
		bars = append(bars, types.Bar{
			Time:   t,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 1000 + rng.Float64()*9000,
		})
		t = t.Add(interval)
	}
	return bars, nil
}
