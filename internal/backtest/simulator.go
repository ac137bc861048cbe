package backtest

import (
	"time"

	"gapfade-bot/internal/marketdata"
	"gapfade-bot/internal/strategy"
)

// Exit reasons recorded on simulated trades.
const (
	ExitStop       = "stop"
	ExitBreakeven  = "breakeven"
	ExitTP3        = "tp3"
	ExitSessionEnd = "session_end"
	ExitTarget     = "target"
)

// TierConfig holds the partial-exit fractions of the three-tier ladder.
type TierConfig struct {
	TP1Pct float64
	TP2Pct float64
	TP3Pct float64
}

// DefaultTierConfig returns the rule set's 50/30/20 ladder.
func DefaultTierConfig() TierConfig {
	return TierConfig{TP1Pct: 0.50, TP2Pct: 0.30, TP3Pct: 0.20}
}

// SimResult is the outcome of a simulated short trade in points.
type SimResult struct {
	PnLPoints  float64
	ExitTime   time.Time
	ExitReason string
}

// fracEpsilon absorbs float drift when comparing remaining position
// fractions against tier sizes.
const fracEpsilon = 0.01

// SimulateShort walks bars forward from the entry bar applying the
// three-tier exit ladder for a short position:
//
//   - a touch of the stop closes the whole remainder; after TP1 the stop
//     is promoted to breakeven at the entry price
//   - TP1 takes its fraction and promotes the stop
//   - TP2 takes its fraction
//   - TP3 closes whatever remains
//   - anything still open when bars run out liquidates at the last close
//
// Tiers without a level are skipped. The entry bar itself participates,
// so a stop can trigger on the bar that created the entry.
func SimulateShort(bars []marketdata.Candle, entryPrice, stop float64, targets strategy.Targets, tiers TierConfig) SimResult {
	remaining := 1.0
	realized := 0.0
	breakeven := false

	result := SimResult{}

	for _, bar := range bars {
		currentStop := stop
		if breakeven {
			currentStop = entryPrice
		}

		if bar.High >= currentStop && remaining > 0 {
			realized += (entryPrice - currentStop) * remaining
			remaining = 0
			result.ExitTime = bar.Time
			if breakeven {
				result.ExitReason = ExitBreakeven
			} else {
				result.ExitReason = ExitStop
			}
			break
		}

		if targets.TP1 != nil && remaining > 1-tiers.TP1Pct+fracEpsilon && bar.Low <= *targets.TP1 {
			realized += (entryPrice - *targets.TP1) * tiers.TP1Pct
			remaining -= tiers.TP1Pct
			breakeven = true
		}

		if targets.TP2 != nil && remaining > tiers.TP3Pct+fracEpsilon && bar.Low <= *targets.TP2 {
			realized += (entryPrice - *targets.TP2) * tiers.TP2Pct
			remaining -= tiers.TP2Pct
		}

		if targets.TP3 != nil && remaining > fracEpsilon && bar.Low <= *targets.TP3 {
			realized += (entryPrice - *targets.TP3) * remaining
			remaining = 0
			result.ExitTime = bar.Time
			result.ExitReason = ExitTP3
			break
		}
	}

	if remaining > fracEpsilon {
		lastPrice := entryPrice
		lastTime := time.Time{}
		if len(bars) > 0 {
			lastPrice = bars[len(bars)-1].Close
			lastTime = bars[len(bars)-1].Time
		}
		realized += (entryPrice - lastPrice) * remaining
		result.ExitTime = lastTime
		result.ExitReason = ExitSessionEnd
	}

	result.PnLPoints = realized
	return result
}

// SimulateSweep walks M5 bars from the setup's entry applying a single
// full exit at stop or target. From the risk-off time onward the stop
// moves to breakeven. Returns false when the data runs out with the
// position still open.
func SimulateSweep(bars []marketdata.Candle, setup strategy.SweepSetup, riskOff marketdata.ClockTime) (SimResult, bool) {
	stop := setup.Stop

	for _, bar := range bars {
		if bar.Time.Before(setup.EntryTime) {
			continue
		}

		if setup.Side == strategy.SideShort {
			if bar.High >= stop {
				return SimResult{PnLPoints: setup.Entry - stop, ExitTime: bar.Time, ExitReason: ExitStop}, true
			}
			if bar.Low <= setup.Target {
				return SimResult{PnLPoints: setup.Entry - setup.Target, ExitTime: bar.Time, ExitReason: ExitTarget}, true
			}
		} else {
			if bar.Low <= stop {
				return SimResult{PnLPoints: stop - setup.Entry, ExitTime: bar.Time, ExitReason: ExitStop}, true
			}
			if bar.High >= setup.Target {
				return SimResult{PnLPoints: setup.Target - setup.Entry, ExitTime: bar.Time, ExitReason: ExitTarget}, true
			}
		}

		clock := marketdata.ClockTime{Hour: bar.Time.Hour(), Minute: bar.Time.Minute()}
		if !clock.Before(riskOff) {
			stop = setup.Entry
		}
	}

	return SimResult{}, false
}
