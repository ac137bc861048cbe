package circuit

import (
	"fmt"
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state.
type BreakerState string

const (
	StateClosed BreakerState = "closed" // trading allowed
	StateOpen   BreakerState = "open"   // trading halted for the day
)

// Config holds circuit breaker configuration.
type Config struct {
	Enabled         bool
	AccountEquity   float64
	MaxDailyLossPct float64 // fraction of equity lost in a day that trips the breaker
}

// DailyLossBreaker halts trading for the remainder of a trading day once
// that day's realized losses reach the configured fraction of account
// equity. State is per calendar day; a new day starts closed.
type DailyLossBreaker struct {
	config   Config
	dailyPnL map[time.Time]float64
	mu       sync.RWMutex
	onTrip   func(day time.Time, loss float64)
}

// NewDailyLossBreaker creates a breaker. A zero-valued config disables
// the loss check.
func NewDailyLossBreaker(config Config) *DailyLossBreaker {
	return &DailyLossBreaker{
		config:   config,
		dailyPnL: make(map[time.Time]float64),
	}
}

// OnTrip sets a callback invoked the first time a day's limit is hit.
func (b *DailyLossBreaker) OnTrip(handler func(day time.Time, loss float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = handler
}

// CanTrade reports whether trading is allowed on the given day, with the
// halt reason when it is not.
func (b *DailyLossBreaker) CanTrade(day time.Time) (bool, string) {
	if !b.config.Enabled {
		return true, ""
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.state(day) == StateOpen {
		return false, fmt.Sprintf("daily loss limit reached (%.2f <= -%.2f)",
			b.dailyPnL[dateKey(day)], b.limit())
	}
	return true, ""
}

// RecordPnL adds a realized trade result to the day's running total and
// trips the breaker when the day's loss reaches the limit.
func (b *DailyLossBreaker) RecordPnL(day time.Time, pnl float64) {
	b.mu.Lock()

	key := dateKey(day)
	before := b.state(day)
	b.dailyPnL[key] += pnl
	after := b.state(day)
	tripped := b.config.Enabled && before == StateClosed && after == StateOpen

	loss := b.dailyPnL[key]
	handler := b.onTrip
	b.mu.Unlock()

	if tripped && handler != nil {
		handler(key, loss)
	}
}

// DailyPnL returns the recorded PnL for a day.
func (b *DailyLossBreaker) DailyPnL(day time.Time) float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dailyPnL[dateKey(day)]
}

// state must be called with the lock held.
func (b *DailyLossBreaker) state(day time.Time) BreakerState {
	if b.config.Enabled && b.limit() > 0 && b.dailyPnL[dateKey(day)] <= -b.limit() {
		return StateOpen
	}
	return StateClosed
}

func (b *DailyLossBreaker) limit() float64 {
	return b.config.AccountEquity * b.config.MaxDailyLossPct
}

func dateKey(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
