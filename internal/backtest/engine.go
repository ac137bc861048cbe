package backtest

import (
	"time"

	"github.com/rs/zerolog"

	"gapfade-bot/internal/analysis"
	"gapfade-bot/internal/circuit"
	"gapfade-bot/internal/marketdata"
	"gapfade-bot/internal/risk"
	"gapfade-bot/internal/strategy"
)

// minContextBars is the minimum daily history and session length before
// a day is worth evaluating.
const minContextBars = 10

// Trade is one simulated trade in the backtest log.
type Trade struct {
	Day          time.Time
	EntryTime    time.Time
	EntryKind    strategy.EntryKind
	EntryPrice   float64
	Stop         float64
	TP1          *float64
	TP2          *float64
	TP3          *float64
	Contracts    int
	SMTConfirmed bool
	ExitTime     time.Time
	ExitReason   string
	PnLPoints    float64
	PnLDollars   float64
}

// EngineConfig holds the session and ladder parameters of a backtest
// run.
type EngineConfig struct {
	SessionStart marketdata.ClockTime
	SessionEnd   marketdata.ClockTime
	Tiers        TierConfig
}

// Engine walks trading days applying the gap-fade rule set: daily gates
// first, then an intraday entry scan, then the tiered trade simulation.
type Engine struct {
	config  EngineConfig
	model   *strategy.GapFadeModel
	risk    *risk.Manager
	breaker *circuit.DailyLossBreaker
	logger  zerolog.Logger
}

// NewEngine creates a backtest engine.
func NewEngine(config EngineConfig, model *strategy.GapFadeModel, riskManager *risk.Manager, breaker *circuit.DailyLossBreaker, logger zerolog.Logger) *Engine {
	if config.Tiers == (TierConfig{}) {
		config.Tiers = DefaultTierConfig()
	}
	return &Engine{
		config:  config,
		model:   model,
		risk:    riskManager,
		breaker: breaker,
		logger:  logger.With().Str("component", "backtest").Logger(),
	}
}

// Run evaluates every trading day covered by the intraday series and
// returns the simulated trade log. SMT divergence is recorded on each
// trade but does not gate entries; the daily gates are block validity,
// bearish bias and the spring filter.
func (e *Engine) Run(daily, confirmDaily, intraday []marketdata.Candle) []Trade {
	var trades []Trade

	cfg := e.model.Config()

	for _, day := range marketdata.TradingDays(intraday) {
		if ok, reason := e.breaker.CanTrade(day); !ok {
			e.logger.Info().Str("day", day.Format("2006-01-02")).Str("reason", reason).Msg("skipping day")
			continue
		}

		dailyCtx := marketdata.UpToDay(daily, day)
		confirmCtx := marketdata.UpToDay(confirmDaily, day)
		if len(dailyCtx) < minContextBars || len(confirmCtx) < minContextBars {
			continue
		}

		block := analysis.IdentifySuspensionBlock(dailyCtx)
		if !block.Valid {
			continue
		}
		if !analysis.DailyBiasBearish(dailyCtx, block) {
			continue
		}
		smt := analysis.SMTDivergenceBearish(dailyCtx, confirmCtx, cfg.SMTLookback)
		if !analysis.SpringFilter(dailyCtx, cfg.ADXThreshold) {
			continue
		}

		session := marketdata.SessionWindow(marketdata.ForDay(intraday, day), e.config.SessionStart, e.config.SessionEnd)
		if len(session) < minContextBars {
			continue
		}

		entry, entryIdx := e.scanForEntry(session, block)
		if entry == nil {
			continue
		}

		stop := e.model.CalculateStop(block)

		var nwog *float64
		if gap, ok := analysis.NWOG(dailyCtx); ok {
			nwog = strategy.Float64Ptr(gap)
		}
		sellside := analysis.FindSellsideLiquidity(session[:entryIdx+1], cfg.LiquidityLookback, cfg.EqualLowsTolerance)
		gradients := analysis.GradientLevels(analysis.GradeWicks(dailyCtx, cfg.WickRatio, cfg.FibLevels))
		targets := e.model.CalculateTargets(entry.Price, nwog, sellside, gradients)

		// A stop-only short has no profitable exit in this ladder.
		if !targets.Identified() {
			e.logger.Debug().Str("day", day.Format("2006-01-02")).Msg("no first-tier target below entry")
			continue
		}

		contracts := e.risk.PositionSize(entry.Price, stop)
		if err := e.risk.CheckTradeRisk(entry.Price, stop, contracts); err != nil {
			e.logger.Debug().Str("day", day.Format("2006-01-02")).Err(err).Msg("risk gate rejected trade")
			continue
		}

		sim := SimulateShort(session[entryIdx:], entry.Price, stop, targets, e.config.Tiers)
		dollars := e.risk.DollarPnL(sim.PnLPoints, contracts)
		e.breaker.RecordPnL(day, dollars)

		trades = append(trades, Trade{
			Day:          day,
			EntryTime:    entry.Time,
			EntryKind:    entry.Kind,
			EntryPrice:   entry.Price,
			Stop:         stop,
			TP1:          targets.TP1,
			TP2:          targets.TP2,
			TP3:          targets.TP3,
			Contracts:    contracts,
			SMTConfirmed: smt,
			ExitTime:     sim.ExitTime,
			ExitReason:   sim.ExitReason,
			PnLPoints:    sim.PnLPoints,
			PnLDollars:   dollars,
		})

		e.logger.Info().
			Str("day", day.Format("2006-01-02")).
			Str("entry_kind", string(entry.Kind)).
			Float64("entry", entry.Price).
			Float64("pnl_points", sim.PnLPoints).
			Str("exit", sim.ExitReason).
			Msg("trade simulated")
	}

	return trades
}

// scanForEntry walks the session bar by bar, rebuilding the live FVG set
// from the bars seen so far, and returns the first rejection entry.
func (e *Engine) scanForEntry(session []marketdata.Candle, block analysis.SuspensionBlock) (*strategy.Entry, int) {
	for i := 2; i < len(session); i++ {
		window := session[:i+1]
		fvgs := e.model.DetectFVGs(window)
		if entry := e.model.FindEntry(window, block, fvgs); entry != nil {
			return entry, i
		}
	}
	return nil, -1
}
