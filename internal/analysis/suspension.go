package analysis

import (
	"math"

	"gapfade-bot/internal/marketdata"
)

// minBlockBars is the minimum number of daily bars needed before a
// suspension block is considered meaningful.
const minBlockBars = 10

// SuspensionBlock is the bearish daily framework: the range from the
// volume bounce low up to the swing high printed after it. CE is the
// consequent encroachment (midpoint) of that range.
type SuspensionBlock struct {
	High  float64
	Low   float64
	CE    float64
	Valid bool
}

// IdentifySuspensionBlock finds the lowest daily low, then the highest
// high printed after it, and derives the CE midpoint. The block is
// invalid with fewer than minBlockBars bars or a degenerate range.
func IdentifySuspensionBlock(daily []marketdata.Candle) SuspensionBlock {
	if len(daily) < minBlockBars {
		return SuspensionBlock{High: math.NaN(), Low: math.NaN(), CE: math.NaN()}
	}

	lowIdx := 0
	low := daily[0].Low
	for i, c := range daily {
		if c.Low < low {
			low = c.Low
			lowIdx = i
		}
	}

	high := daily[lowIdx].High
	for _, c := range daily[lowIdx:] {
		if c.High > high {
			high = c.High
		}
	}

	if high <= low {
		return SuspensionBlock{High: high, Low: low, CE: math.NaN()}
	}

	return SuspensionBlock{
		High:  high,
		Low:   low,
		CE:    (high + low) / 2,
		Valid: true,
	}
}

// DailyBiasBearish reports whether the latest daily close sits below the
// CE of a valid suspension block.
func DailyBiasBearish(daily []marketdata.Candle, block SuspensionBlock) bool {
	if !block.Valid || len(daily) == 0 {
		return false
	}
	return daily[len(daily)-1].Close < block.CE
}
