package analysis

import (
	"sort"
	"time"

	"gapfade-bot/internal/marketdata"
)

// WickGrade holds the Fibonacci gradient levels drawn over a significant
// lower wick on a daily candle.
type WickGrade struct {
	Date     time.Time
	WickLow  float64
	WickHigh float64
	Levels   map[float64]float64 // fib fraction -> price
}

// GradeWicks finds daily candles whose lower wick makes up at least
// wickRatio of the candle's total range and lays the given Fibonacci
// fractions across the wick. Degenerate candles (high == low) are
// skipped.
func GradeWicks(daily []marketdata.Candle, wickRatio float64, fibs []float64) []WickGrade {
	var grades []WickGrade

	fractions := dedupeSorted(fibs)

	for _, c := range daily {
		totalRange := c.High - c.Low
		if totalRange <= 0 {
			continue
		}

		wickTop := c.Open
		if c.Close < wickTop {
			wickTop = c.Close
		}
		lowerWick := wickTop - c.Low
		if lowerWick/totalRange < wickRatio {
			continue
		}

		levels := make(map[float64]float64, len(fractions))
		for _, f := range fractions {
			levels[f] = c.Low + lowerWick*f
		}
		grades = append(grades, WickGrade{
			Date:     c.Time,
			WickLow:  c.Low,
			WickHigh: wickTop,
			Levels:   levels,
		})
	}
	return grades
}

// GradientLevels flattens the level prices of a set of wick grades.
func GradientLevels(grades []WickGrade) []float64 {
	var levels []float64
	for _, g := range grades {
		for _, price := range g.Levels {
			levels = append(levels, price)
		}
	}
	return levels
}

// NWOG returns the new week opening gap reference: the Monday open of
// the first Friday-to-Monday pair of adjacent daily candles. Returns
// false when the series spans no weekend.
func NWOG(daily []marketdata.Candle) (float64, bool) {
	if len(daily) < 3 {
		return 0, false
	}

	sorted := make([]marketdata.Candle, len(daily))
	copy(sorted, daily)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Time.Weekday() == time.Friday && sorted[i].Time.Weekday() == time.Monday {
			return sorted[i].Open, true
		}
	}
	return 0, false
}

// FindSellsideLiquidity clusters near-equal lows over the trailing
// lookback bars. Lows within tolerance points of a cluster's running
// mean join it; clusters with at least two members resolve to their mean
// as a liquidity level.
func FindSellsideLiquidity(candles []marketdata.Candle, lookback int, tolerance float64) []float64 {
	if len(candles) == 0 {
		return nil
	}

	lows := marketdata.Lows(tail(candles, lookback))
	sort.Float64s(lows)

	var clusters [][]float64
	for _, low := range lows {
		placed := false
		for i, cluster := range clusters {
			if abs(low-mean(cluster)) <= tolerance {
				clusters[i] = append(cluster, low)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []float64{low})
		}
	}

	var levels []float64
	for _, cluster := range clusters {
		if len(cluster) >= 2 {
			levels = append(levels, mean(cluster))
		}
	}
	return levels
}

func dedupeSorted(values []float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
