package analysis

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"gapfade-bot/internal/marketdata"
)

// adxPeriod is the standard Wilder smoothing window for ADX.
const adxPeriod = 14

// ADX returns the latest 14-period average directional index of the
// series, or false when there is not enough data to compute it.
func ADX(candles []marketdata.Candle) (float64, bool) {
	// talib needs a full warm-up window before ADX stabilizes.
	if len(candles) < 2*adxPeriod+1 {
		return 0, false
	}

	values := talib.Adx(marketdata.Highs(candles), marketdata.Lows(candles), marketdata.Closes(candles), adxPeriod)
	if len(values) == 0 {
		return 0, false
	}

	latest := values[len(values)-1]
	if math.IsNaN(latest) || math.IsInf(latest, 0) {
		return 0, false
	}
	return latest, true
}

// SpringFilter is the choppy-market gate: trading is allowed only when
// the daily ADX shows a directional market. When ADX cannot be computed
// the filter errs on the side of allowing trades, matching the rule
// set's discretionary fallback.
func SpringFilter(daily []marketdata.Candle, threshold float64) bool {
	adx, ok := ADX(daily)
	if !ok {
		return true
	}
	return adx >= threshold
}
