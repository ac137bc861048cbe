package marketdata

import (
	"fmt"
	"sort"
	"time"
)

// Candle represents a single OHLCV bar. Timestamps are bar open times in
// the exchange timezone.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Highs extracts the high prices from a candle series
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low prices from a candle series
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Closes extracts the close prices from a candle series
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// TradingDays returns the distinct calendar dates covered by the series,
// in ascending order. Dates are midnight in each candle's own location.
func TradingDays(candles []Candle) []time.Time {
	seen := make(map[time.Time]bool)
	var days []time.Time
	for _, c := range candles {
		y, m, d := c.Time.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, c.Time.Location())
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// ForDay filters the series down to candles whose date matches day.
func ForDay(candles []Candle, day time.Time) []Candle {
	var out []Candle
	for _, c := range candles {
		if sameDate(c.Time, day) {
			out = append(out, c)
		}
	}
	return out
}

// UpToDay returns candles dated on or before day. Used to build the
// daily context window the way a trader would have seen it.
func UpToDay(candles []Candle, day time.Time) []Candle {
	var out []Candle
	for _, c := range candles {
		y, m, d := c.Time.Date()
		cd := time.Date(y, m, d, 0, 0, 0, 0, c.Time.Location())
		if !cd.After(day) {
			out = append(out, c)
		}
	}
	return out
}

// SessionWindow filters intraday candles to a clock window, e.g. 08:00
// through 16:00. Both bounds are inclusive.
func SessionWindow(candles []Candle, start, end ClockTime) []Candle {
	var out []Candle
	for _, c := range candles {
		t := ClockTime{Hour: c.Time.Hour(), Minute: c.Time.Minute()}
		if !t.Before(start) && !end.Before(t) {
			out = append(out, c)
		}
	}
	return out
}

// Resample aggregates candles into buckets of the given duration using
// first open, max high, min low, last close and summed volume. Input
// must be in ascending time order; empty buckets are omitted.
func Resample(candles []Candle, interval time.Duration) []Candle {
	if len(candles) == 0 {
		return nil
	}

	var out []Candle
	var cur *Candle
	var bucket time.Time

	for _, c := range candles {
		b := c.Time.Truncate(interval)
		if cur == nil || !b.Equal(bucket) {
			if cur != nil {
				out = append(out, *cur)
			}
			bucket = b
			cc := c
			cc.Time = b
			cur = &cc
			continue
		}
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	out = append(out, *cur)
	return out
}

// ClockTime is a wall-clock time of day, independent of date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" into a ClockTime.
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	if _, err := fmt.Sscanf(s, "%d:%d", &ct.Hour, &ct.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	return ct, nil
}

// Before reports whether t is strictly earlier in the day than other.
func (t ClockTime) Before(other ClockTime) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

func sameDate(t, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
