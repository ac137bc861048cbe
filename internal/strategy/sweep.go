package strategy

import (
	"time"

	talib "github.com/markcheno/go-talib"

	"gapfade-bot/internal/marketdata"
)

// SweepConfig configures the daily liquidity sweep model.
type SweepConfig struct {
	ADXThreshold      float64              // below this the stop falls back to the H1 extreme
	ADXPeriod         int                  // Wilder window for the H1 ADX
	RetestBars        int                  // M5 bars allowed for the order block retest
	RiskMultiple      float64              // target distance as a multiple of risk
	MaxAttemptsPerDay int                  // completed trades allowed per day
	RiskOffTime       marketdata.ClockTime // stop moves to breakeven from here on
}

// DefaultSweepConfig returns the rule set's published parameters.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		ADXThreshold:      20,
		ADXPeriod:         14,
		RetestBars:        12,
		RiskMultiple:      2.0,
		MaxAttemptsPerDay: 2,
		RiskOffTime:       marketdata.ClockTime{Hour: 11, Minute: 0},
	}
}

// SweepEvent is a confirmed liquidity sweep of a fresh H1 swing level.
type SweepEvent struct {
	Time    time.Time
	H1Index int
	Side    Side
	Level   float64
}

// SweepSetup is a tradeable setup derived from a sweep: an M5 break of
// structure followed by an order block retest.
type SweepSetup struct {
	Side      Side
	EntryTime time.Time
	Entry     float64
	Stop      float64
	Target    float64
}

// SweepModel implements the daily sweep heuristic: fade H1 liquidity
// sweeps once intraday structure breaks in the sweep's direction.
type SweepModel struct {
	config SweepConfig
}

// NewSweepModel creates the model, filling zero config fields from the
// defaults.
func NewSweepModel(config SweepConfig) *SweepModel {
	def := DefaultSweepConfig()
	if config.ADXThreshold <= 0 {
		config.ADXThreshold = def.ADXThreshold
	}
	if config.ADXPeriod <= 0 {
		config.ADXPeriod = def.ADXPeriod
	}
	if config.RetestBars <= 0 {
		config.RetestBars = def.RetestBars
	}
	if config.RiskMultiple <= 0 {
		config.RiskMultiple = def.RiskMultiple
	}
	if config.MaxAttemptsPerDay <= 0 {
		config.MaxAttemptsPerDay = def.MaxAttemptsPerDay
	}
	if config.RiskOffTime == (marketdata.ClockTime{}) {
		config.RiskOffTime = def.RiskOffTime
	}
	return &SweepModel{config: config}
}

// Config returns the effective model configuration.
func (m *SweepModel) Config() SweepConfig {
	return m.config
}

// DetectSweeps walks the H1 series tracking the freshest unswept swing
// levels and reports sweeps: a wick through a fresh level with a close
// back on the original side, confirmed on the same or the next candle.
// A level survives one touch; a second touch or a close through it
// retires the level.
func (m *SweepModel) DetectSweeps(h1 []marketdata.Candle) []SweepEvent {
	if len(h1) < 5 {
		return nil
	}

	var events []SweepEvent

	var freshHigh, freshLow *float64
	highTouches, lowTouches := 0, 0

	for i := 2; i < len(h1)-2; i++ {
		bar := h1[i]

		if isSwingHigh(h1, i) {
			freshHigh = Float64Ptr(bar.High)
			highTouches = 0
		}
		if isSwingLow(h1, i) {
			freshLow = Float64Ptr(bar.Low)
			lowTouches = 0
		}

		// Same-candle confirmation.
		if freshHigh != nil && bar.High > *freshHigh && bar.Close < *freshHigh {
			events = append(events, SweepEvent{Time: bar.Time, H1Index: i, Side: SideShort, Level: *freshHigh})
			freshHigh = nil
			highTouches = 0
		}
		if freshLow != nil && bar.Low < *freshLow && bar.Close > *freshLow {
			events = append(events, SweepEvent{Time: bar.Time, H1Index: i, Side: SideLong, Level: *freshLow})
			freshLow = nil
			lowTouches = 0
		}

		// Next-candle confirmation: the previous bar wicked through and
		// this bar closes back inside.
		if freshHigh != nil && h1[i-1].High > *freshHigh && bar.Close < *freshHigh {
			events = append(events, SweepEvent{Time: bar.Time, H1Index: i, Side: SideShort, Level: *freshHigh})
			freshHigh = nil
			highTouches = 0
		}
		if freshLow != nil && h1[i-1].Low < *freshLow && bar.Close > *freshLow {
			events = append(events, SweepEvent{Time: bar.Time, H1Index: i, Side: SideLong, Level: *freshLow})
			freshLow = nil
			lowTouches = 0
		}

		// Touch accounting: one touch is allowed, a second or a close
		// through the level retires it.
		if freshHigh != nil {
			if bar.High >= *freshHigh {
				highTouches++
			}
			if highTouches >= 2 || bar.Close > *freshHigh {
				freshHigh = nil
				highTouches = 0
			}
		}
		if freshLow != nil {
			if bar.Low <= *freshLow {
				lowTouches++
			}
			if lowTouches >= 2 || bar.Close < *freshLow {
				freshLow = nil
				lowTouches = 0
			}
		}
	}

	return events
}

// FindSetup searches the hour of M5 bars after a sweep for a break of
// structure and an order block retest. Returns nil when the structure
// never breaks or the retest window expires.
func (m *SweepModel) FindSetup(m5 []marketdata.Candle, h1 []marketdata.Candle, event SweepEvent) *SweepSetup {
	window := barsBetween(m5, event.Time, event.Time.Add(time.Hour))
	if len(window) < 5 {
		return nil
	}

	adx := m.h1ADX(h1, event.H1Index)

	for j := 2; j < len(window)-2; j++ {
		bar := window[j]
		prior := window[:j+1]

		if event.Side == SideShort {
			bosLevel, ok := lastSwingLow(prior)
			if !ok || bar.Low >= bosLevel {
				continue
			}
			// Order block: last bullish candle before the break.
			ob, ok := lastBullish(prior)
			if !ok {
				continue
			}
			retest, ok := firstRetestAbove(window[j:], m.config.RetestBars, ob.High)
			if !ok {
				return nil
			}
			stop := h1[event.H1Index].High
			if adx >= m.config.ADXThreshold {
				if sw, ok := lastSwingHigh(prior); ok {
					stop = sw
				} else {
					stop = ob.High
				}
			}
			entry := ob.High
			risk := stop - entry
			return &SweepSetup{
				Side:      SideShort,
				EntryTime: retest.Time,
				Entry:     entry,
				Stop:      stop,
				Target:    entry - m.config.RiskMultiple*risk,
			}
		}

		bosLevel, ok := lastSwingHigh(prior)
		if !ok || bar.High <= bosLevel {
			continue
		}
		ob, ok := lastBearish(prior)
		if !ok {
			continue
		}
		retest, ok := firstRetestBelow(window[j:], m.config.RetestBars, ob.Low)
		if !ok {
			return nil
		}
		stop := h1[event.H1Index].Low
		if adx >= m.config.ADXThreshold {
			if sw, ok := lastSwingLow(prior); ok {
				stop = sw
			} else {
				stop = ob.Low
			}
		}
		entry := ob.Low
		risk := entry - stop
		return &SweepSetup{
			Side:      SideLong,
			EntryTime: retest.Time,
			Entry:     entry,
			Stop:      stop,
			Target:    entry + m.config.RiskMultiple*risk,
		}
	}

	return nil
}

// h1ADX returns the ADX value of the H1 series at index, or zero when
// the series is too short, which forces the conservative stop.
func (m *SweepModel) h1ADX(h1 []marketdata.Candle, index int) float64 {
	if len(h1) < 2*m.config.ADXPeriod+1 || index >= len(h1) {
		return 0
	}
	values := talib.Adx(marketdata.Highs(h1), marketdata.Lows(h1), marketdata.Closes(h1), m.config.ADXPeriod)
	if index >= len(values) {
		return 0
	}
	return values[index]
}

func isSwingHigh(candles []marketdata.Candle, i int) bool {
	if i < 2 || i > len(candles)-3 {
		return false
	}
	h := candles[i].High
	return h > candles[i-1].High && h > candles[i-2].High &&
		h > candles[i+1].High && h > candles[i+2].High
}

func isSwingLow(candles []marketdata.Candle, i int) bool {
	if i < 2 || i > len(candles)-3 {
		return false
	}
	l := candles[i].Low
	return l < candles[i-1].Low && l < candles[i-2].Low &&
		l < candles[i+1].Low && l < candles[i+2].Low
}

func barsBetween(candles []marketdata.Candle, after, until time.Time) []marketdata.Candle {
	var out []marketdata.Candle
	for _, c := range candles {
		if c.Time.After(after) && !c.Time.After(until) {
			out = append(out, c)
		}
	}
	return out
}

func lastSwingLow(candles []marketdata.Candle) (float64, bool) {
	for i := len(candles) - 3; i >= 2; i-- {
		if isSwingLow(candles, i) {
			return candles[i].Low, true
		}
	}
	return 0, false
}

func lastSwingHigh(candles []marketdata.Candle) (float64, bool) {
	for i := len(candles) - 3; i >= 2; i-- {
		if isSwingHigh(candles, i) {
			return candles[i].High, true
		}
	}
	return 0, false
}

func lastBullish(candles []marketdata.Candle) (marketdata.Candle, bool) {
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Close > candles[i].Open {
			return candles[i], true
		}
	}
	return marketdata.Candle{}, false
}

func lastBearish(candles []marketdata.Candle) (marketdata.Candle, bool) {
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Close < candles[i].Open {
			return candles[i], true
		}
	}
	return marketdata.Candle{}, false
}

func firstRetestAbove(candles []marketdata.Candle, limit int, level float64) (marketdata.Candle, bool) {
	if limit < len(candles) {
		candles = candles[:limit]
	}
	for _, c := range candles {
		if c.High >= level {
			return c, true
		}
	}
	return marketdata.Candle{}, false
}

func firstRetestBelow(candles []marketdata.Candle, limit int, level float64) (marketdata.Candle, bool) {
	if limit < len(candles) {
		candles = candles[:limit]
	}
	for _, c := range candles {
		if c.Low <= level {
			return c, true
		}
	}
	return marketdata.Candle{}, false
}
