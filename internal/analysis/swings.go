package analysis

import "gapfade-bot/internal/marketdata"

// SwingHighs finds swing highs with 2-bar confirmation on each side:
// the high must exceed the highs of the two bars before and after it.
func SwingHighs(candles []marketdata.Candle) []float64 {
	var highs []float64
	if len(candles) < 5 {
		return highs
	}

	for i := 2; i < len(candles)-2; i++ {
		h := candles[i].High
		if h > candles[i-1].High && h > candles[i-2].High &&
			h > candles[i+1].High && h > candles[i+2].High {
			highs = append(highs, h)
		}
	}
	return highs
}

// SwingLows finds swing lows with 2-bar confirmation on each side.
func SwingLows(candles []marketdata.Candle) []float64 {
	var lows []float64
	if len(candles) < 5 {
		return lows
	}

	for i := 2; i < len(candles)-2; i++ {
		l := candles[i].Low
		if l < candles[i-1].Low && l < candles[i-2].Low &&
			l < candles[i+1].Low && l < candles[i+2].Low {
			lows = append(lows, l)
		}
	}
	return lows
}

// SMTDivergenceBearish checks for smart money technique divergence over
// the trailing lookback window: the primary index prints a higher swing
// high while the correlated index prints a lower swing high. Both series
// need at least two confirmed swing highs.
func SMTDivergenceBearish(primary, confirm []marketdata.Candle, lookback int) bool {
	if len(primary) == 0 || len(confirm) == 0 {
		return false
	}

	p := tail(primary, lookback)
	c := tail(confirm, lookback)

	pHighs := SwingHighs(p)
	cHighs := SwingHighs(c)
	if len(pHighs) < 2 || len(cHighs) < 2 {
		return false
	}

	return pHighs[len(pHighs)-1] > pHighs[len(pHighs)-2] &&
		cHighs[len(cHighs)-1] < cHighs[len(cHighs)-2]
}

func tail(candles []marketdata.Candle, n int) []marketdata.Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}
