package analysis

import (
	"time"

	"gapfade-bot/internal/marketdata"
)

// FVG represents a bearish fair value gap: a three-candle sequence where
// the first candle's low sits above the third candle's high, leaving an
// unfilled imbalance between them.
type FVG struct {
	Time   time.Time // open time of the third candle
	Top    float64   // first candle low
	Bottom float64   // third candle high
}

// FVGDetector detects bearish fair value gaps in intraday candles.
type FVGDetector struct {
	minGapPoints float64
}

// NewFVGDetector creates an FVG detector. Gaps smaller than
// minGapPoints are ignored; zero keeps every gap.
func NewFVGDetector(minGapPoints float64) *FVGDetector {
	if minGapPoints < 0 {
		minGapPoints = 0
	}
	return &FVGDetector{minGapPoints: minGapPoints}
}

// Detect identifies all bearish FVGs in the series.
func (fd *FVGDetector) Detect(candles []marketdata.Candle) []FVG {
	if len(candles) < 3 {
		return nil
	}

	var fvgs []FVG
	for i := 2; i < len(candles); i++ {
		c1 := candles[i-2]
		c3 := candles[i]

		if c1.Low > c3.High && c1.Low-c3.High >= fd.minGapPoints {
			fvgs = append(fvgs, FVG{
				Time:   c3.Time,
				Top:    c1.Low,
				Bottom: c3.High,
			})
		}
	}
	return fvgs
}

// InGap reports whether price sits inside the gap zone.
func (f FVG) InGap(price float64) bool {
	return price >= f.Bottom && price <= f.Top
}
