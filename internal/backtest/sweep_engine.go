package backtest

import (
	"time"

	"github.com/rs/zerolog"

	"gapfade-bot/internal/marketdata"
	"gapfade-bot/internal/strategy"
)

// SweepTrade is one simulated trade of the daily sweep model.
type SweepTrade struct {
	Day        time.Time
	Side       strategy.Side
	EntryTime  time.Time
	Entry      float64
	Stop       float64
	Target     float64
	ExitTime   time.Time
	ExitReason string
	PnLPoints  float64
}

// SweepEngine runs the liquidity sweep model over an M5 series,
// resampling to H1 internally.
type SweepEngine struct {
	model  *strategy.SweepModel
	logger zerolog.Logger
}

// NewSweepEngine creates a sweep backtest engine.
func NewSweepEngine(model *strategy.SweepModel, logger zerolog.Logger) *SweepEngine {
	return &SweepEngine{
		model:  model,
		logger: logger.With().Str("component", "sweep_backtest").Logger(),
	}
}

// Run detects H1 sweeps, qualifies each with an M5 break of structure
// and order block retest, and simulates the resulting trades. Days are
// capped at the configured attempt count; setups whose trades never
// resolve before the data ends are dropped.
func (e *SweepEngine) Run(m5 []marketdata.Candle) []SweepTrade {
	if len(m5) == 0 {
		return nil
	}

	h1 := marketdata.Resample(m5, time.Hour)
	events := e.model.DetectSweeps(h1)
	cfg := e.model.Config()

	attempts := make(map[time.Time]int)
	var trades []SweepTrade

	for _, event := range events {
		day := dateOf(event.Time)
		if attempts[day] >= cfg.MaxAttemptsPerDay {
			continue
		}

		setup := e.model.FindSetup(m5, h1, event)
		if setup == nil {
			continue
		}

		sim, resolved := SimulateSweep(m5, *setup, cfg.RiskOffTime)
		if !resolved {
			continue
		}

		attempts[day]++
		trades = append(trades, SweepTrade{
			Day:        day,
			Side:       setup.Side,
			EntryTime:  setup.EntryTime,
			Entry:      setup.Entry,
			Stop:       setup.Stop,
			Target:     setup.Target,
			ExitTime:   sim.ExitTime,
			ExitReason: sim.ExitReason,
			PnLPoints:  sim.PnLPoints,
		})

		e.logger.Info().
			Str("day", day.Format("2006-01-02")).
			Str("side", string(setup.Side)).
			Float64("entry", setup.Entry).
			Float64("pnl_points", sim.PnLPoints).
			Str("exit", sim.ExitReason).
			Msg("sweep trade simulated")
	}

	return trades
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
