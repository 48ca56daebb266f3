package risk

import "math"

// PositionSize returns the lot size for a trade that risks riskPct
// percent of equity over stopPips of stop distance. The raw size is
// capped at maxLot and floored to the tradable step; anything below
// minLot comes back as 0, meaning no trade.
//
// The function is pure: identical inputs always produce the identical
// size.
func PositionSize(equity, stopPips, riskPct, pipValuePerLot, step, minLot, maxLot float64) float64 {
	if equity <= 0 || stopPips <= 0 || riskPct <= 0 || pipValuePerLot <= 0 || step <= 0 {
		return 0
	}
	riskAmt := equity * riskPct / 100
	lots := riskAmt / (stopPips * pipValuePerLot)
	if maxLot > 0 && lots > maxLot {
		lots = maxLot
	}
	lots = math.Floor(lots/step) * step
	if lots < minLot {
		return 0
	}
	return lots
}
