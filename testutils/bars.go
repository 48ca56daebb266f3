package testutils

import (
	"time"

	"github.com/fxsim/lbgo/types"
)

// Day is a convenience anchor for building intraday test bars.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// At places a flat bar (O=H=L=C) at hh:mm of day.
func At(day time.Time, hh, mm int, price float64) types.Bar {
	return Bar(day, hh, mm, price, price, price, price)
}

// Bar builds an OHLC bar at hh:mm of day.
func Bar(day time.Time, hh, mm int, open, high, low, close float64) types.Bar {
	return types.Bar{
		Time:   day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

// RangeBars lays down two bars inside [startHH, endHH) that pin the
// day's reference range to exactly high/low.
func RangeBars(day time.Time, startHH int, high, low float64) []types.Bar {
	mid := (high + low) / 2
	return []types.Bar{
		Bar(day, startHH, 0, mid, high, mid, mid),
		Bar(day, startHH+1, 0, mid, mid, low, mid),
	}
}
