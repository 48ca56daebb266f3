package risk

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPositionSizeProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	equityGen := gen.Float64Range(100, 1e7)
	stopGen := gen.Float64Range(1, 500)
	riskGen := gen.Float64Range(0.1, 5)

	properties.Property("never exceeds the lot cap", prop.ForAll(
		func(equity, stopPips, riskPct float64) bool {
			return PositionSize(equity, stopPips, riskPct, 10, 0.01, 0.01, 1.0) <= 1.0
		},
		equityGen, stopGen, riskGen,
	))

	properties.Property("risked amount never exceeds the budget", prop.ForAll(
		func(equity, stopPips, riskPct float64) bool {
			lots := PositionSize(equity, stopPips, riskPct, 10, 0.01, 0.01, math.Inf(1))
			return lots*stopPips*10 <= equity*riskPct/100+1e-6
		},
		equityGen, stopGen, riskGen,
	))

	properties.Property("size is a whole multiple of the lot step", prop.ForAll(
		func(equity, stopPips, riskPct float64) bool {
			lots := PositionSize(equity, stopPips, riskPct, 10, 0.01, 0.01, 1.0)
			steps := lots / 0.01
			return math.Abs(steps-math.Round(steps)) < 1e-6
		},
		equityGen, stopGen, riskGen,
	))

	properties.Property("a wider stop never sizes larger", prop.ForAll(
		func(equity, stopPips, extra, riskPct float64) bool {
			near := PositionSize(equity, stopPips, riskPct, 10, 0.01, 0.01, 1.0)
			far := PositionSize(equity, stopPips+extra, riskPct, 10, 0.01, 0.01, 1.0)
			return far <= near
		},
		equityGen, stopGen, gen.Float64Range(0, 200), riskGen,
	))

	properties.Property("more equity never sizes smaller", prop.ForAll(
		func(equity, extra, stopPips, riskPct float64) bool {
			small := PositionSize(equity, stopPips, riskPct, 10, 0.01, 0.01, math.Inf(1))
			large := PositionSize(equity+extra, stopPips, riskPct, 10, 0.01, 0.01, math.Inf(1))
			return large >= small
		},
		equityGen, gen.Float64Range(0, 1e6), stopGen, riskGen,
	))

	properties.TestingRun(t)
}
