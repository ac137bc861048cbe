package analysis

import (
	"math"
	"testing"
	"time"

	"gapfade-bot/internal/marketdata"
)

func candlesWithLows(lows []float64) []marketdata.Candle {
	start := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	candles := make([]marketdata.Candle, len(lows))
	for i, l := range lows {
		candles[i] = marketdata.Candle{
			Time:  start.Add(time.Duration(i) * 5 * time.Minute),
			Open:  l + 5,
			High:  l + 10,
			Low:   l,
			Close: l + 5,
		}
	}
	return candles
}

// TestFindSellsideLiquidity tests that near-equal lows cluster to their
// mean while isolated lows are dropped.
func TestFindSellsideLiquidity(t *testing.T) {
	candles := candlesWithLows([]float64{100, 101, 99.5, 150, 200.5, 199.5})

	levels := FindSellsideLiquidity(candles, 100, 2.0)
	if len(levels) != 2 {
		t.Fatalf("Expected 2 liquidity levels, got %d: %v", len(levels), levels)
	}
	if math.Abs(levels[0]-100.17) > 0.1 {
		t.Errorf("Expected first cluster near 100.17, got %f", levels[0])
	}
	if math.Abs(levels[1]-200.0) > 0.1 {
		t.Errorf("Expected second cluster near 200, got %f", levels[1])
	}
}

// TestFindSellsideLiquidityNoClusters tests that spread-out lows produce
// no levels.
func TestFindSellsideLiquidityNoClusters(t *testing.T) {
	candles := candlesWithLows([]float64{100, 110, 120, 130})

	if levels := FindSellsideLiquidity(candles, 100, 2.0); len(levels) != 0 {
		t.Errorf("Expected no liquidity levels, got %v", levels)
	}
}

// TestFindSellsideLiquidityLookback tests that lows outside the lookback
// window do not contribute to clusters.
func TestFindSellsideLiquidityLookback(t *testing.T) {
	candles := candlesWithLows([]float64{100, 100.5, 130, 140, 150})

	if levels := FindSellsideLiquidity(candles, 3, 2.0); len(levels) != 0 {
		t.Errorf("Expected no levels within lookback, got %v", levels)
	}
}

// TestNWOG tests that the new week opening gap resolves to the Monday
// open following the first Friday candle.
func TestNWOG(t *testing.T) {
	// Thu Jan 8, Fri Jan 9, Mon Jan 12 2026.
	daily := []marketdata.Candle{
		{Time: time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), Open: 100, High: 105, Low: 95, Close: 101},
		{Time: time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC), Open: 101, High: 106, Low: 96, Close: 102},
		{Time: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Open: 110, High: 115, Low: 105, Close: 111},
	}

	open, ok := NWOG(daily)
	if !ok {
		t.Fatal("Expected NWOG to be found")
	}
	if open != 110 {
		t.Errorf("Expected Monday open 110, got %f", open)
	}
}

// TestNWOGNoWeekend tests weekday-only series without a Friday-to-Monday
// boundary.
func TestNWOGNoWeekend(t *testing.T) {
	daily := []marketdata.Candle{
		{Time: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)},
		{Time: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)},
		{Time: time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC)},
	}

	if _, ok := NWOG(daily); ok {
		t.Error("Expected no NWOG without a weekend boundary")
	}
}

// TestGradeWicks tests that only candles with a dominant lower wick are
// graded and that levels interpolate across the wick.
func TestGradeWicks(t *testing.T) {
	daily := []marketdata.Candle{
		// Lower wick 80 of 100 range.
		{Time: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Open: 185, High: 200, Low: 100, Close: 180},
		// Barely any wick.
		{Time: time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), Open: 105, High: 200, Low: 100, Close: 195},
		// Degenerate bar.
		{Time: time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), Open: 150, High: 150, Low: 150, Close: 150},
	}

	grades := GradeWicks(daily, 0.5, []float64{0.25, 0.5, 0.75})
	if len(grades) != 1 {
		t.Fatalf("Expected 1 graded wick, got %d", len(grades))
	}

	g := grades[0]
	if g.WickLow != 100 || g.WickHigh != 180 {
		t.Errorf("Expected wick 100-180, got %f-%f", g.WickLow, g.WickHigh)
	}
	if g.Levels[0.5] != 140 {
		t.Errorf("Expected 0.5 level at 140, got %f", g.Levels[0.5])
	}
	if g.Levels[0.25] != 120 {
		t.Errorf("Expected 0.25 level at 120, got %f", g.Levels[0.25])
	}
}

// TestGradientLevels tests flattening grade levels into a price list.
func TestGradientLevels(t *testing.T) {
	grades := []WickGrade{
		{Levels: map[float64]float64{0.5: 140}},
		{Levels: map[float64]float64{0.5: 240}},
	}

	levels := GradientLevels(grades)
	if len(levels) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(levels))
	}
}
