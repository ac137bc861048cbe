package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"gapfade-bot/config"
	"gapfade-bot/internal/backtest"
	"gapfade-bot/internal/circuit"
	"gapfade-bot/internal/logging"
	"gapfade-bot/internal/marketdata"
	"gapfade-bot/internal/risk"
	"gapfade-bot/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/bearish_on_gap_up.yaml", "path to YAML config")
	strategyName := flag.String("strategy", "gapfade", "strategy to backtest: gapfade or sweep")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var runErr error
	switch *strategyName {
	case "gapfade":
		runErr = runGapFade(ctx, cfg, logger)
	case "sweep":
		runErr = runSweep(ctx, cfg, logger)
	default:
		runErr = fmt.Errorf("unknown strategy %q", *strategyName)
	}

	if runErr != nil {
		logger.Fatal().Err(runErr).Msg("backtest failed")
	}
}

func runGapFade(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	client := marketdata.NewClient(cfg.Data.BaseURL, cfg.Location(), logger)

	logger.Info().
		Str("symbol", cfg.Data.Symbol).
		Str("confirm", cfg.Data.ConfirmSymbol).
		Msg("fetching daily data")

	daily, err := client.GetCandles(ctx, cfg.Data.Symbol, "1d", cfg.Data.DailyLookback)
	if err != nil {
		return fmt.Errorf("fetching daily data: %w", err)
	}
	confirmDaily, err := client.GetCandles(ctx, cfg.Data.ConfirmSymbol, "1d", cfg.Data.DailyLookback)
	if err != nil {
		return fmt.Errorf("fetching confirm daily data: %w", err)
	}

	logger.Info().Str("interval", cfg.Data.IntradayInterval).Msg("fetching intraday data")
	intraday, err := client.GetCandles(ctx, cfg.Data.Symbol, cfg.Data.IntradayInterval, cfg.Data.IntradayLookback)
	if err != nil {
		return fmt.Errorf("fetching intraday data: %w", err)
	}

	sessionStart, err := marketdata.ParseClockTime(cfg.Session.Start)
	if err != nil {
		return err
	}
	sessionEnd, err := marketdata.ParseClockTime(cfg.Session.End)
	if err != nil {
		return err
	}

	model := strategy.NewGapFadeModel(strategy.GapFadeConfig{
		StopBufferPoints:   cfg.Model.StopBufferPoints,
		ADXThreshold:       cfg.Model.ADXThreshold,
		SMTLookback:        cfg.Model.SMTLookback,
		WickRatio:          cfg.Model.WickRatio,
		EqualLowsTolerance: cfg.Model.EqualLowsTolerance,
		MinGapPoints:       cfg.Model.MinGapPoints,
		LiquidityLookback:  cfg.Model.LiquidityLookback,
		FibLevels:          cfg.Model.FibLevels(),
	})

	riskManager := risk.NewManager(risk.Config{
		AccountEquity:      cfg.Risk.AccountEquity,
		MaxRiskPct:         cfg.Risk.MaxRiskPct,
		MicroContractValue: cfg.Risk.MicroContractValue,
		MinContracts:       cfg.Risk.MinContracts,
		MaxContracts:       cfg.Risk.MaxContracts,
	})

	breaker := circuit.NewDailyLossBreaker(circuit.Config{
		Enabled:         cfg.Risk.MaxDailyLossPct > 0,
		AccountEquity:   cfg.Risk.AccountEquity,
		MaxDailyLossPct: cfg.Risk.MaxDailyLossPct,
	})
	breaker.OnTrip(func(day time.Time, loss float64) {
		logger.Warn().
			Str("day", day.Format("2006-01-02")).
			Float64("loss", loss).
			Msg("daily loss limit tripped")
	})

	engine := backtest.NewEngine(backtest.EngineConfig{
		SessionStart: sessionStart,
		SessionEnd:   sessionEnd,
		Tiers: backtest.TierConfig{
			TP1Pct: cfg.Tiers.TP1Pct,
			TP2Pct: cfg.Tiers.TP2Pct,
			TP3Pct: cfg.Tiers.TP3Pct,
		},
	}, model, riskManager, breaker, logger)

	trades := engine.Run(daily, confirmDaily, intraday)
	summary := backtest.Summarize(trades)

	if err := backtest.WriteTradesCSV(cfg.Output.TradesCSV, trades); err != nil {
		return err
	}
	if err := backtest.WriteSummaryCSV(cfg.Output.SummaryCSV, summary.Rows()); err != nil {
		return err
	}

	logSummary(logger, summary.Rows())
	logger.Info().
		Str("trades_csv", cfg.Output.TradesCSV).
		Str("summary_csv", cfg.Output.SummaryCSV).
		Msg("reports written")
	return nil
}

func runSweep(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	client := marketdata.NewClient(cfg.Data.BaseURL, cfg.Location(), logger)

	logger.Info().Str("symbol", cfg.Data.ConfirmSymbol).Msg("fetching intraday data for sweep model")
	m5, err := client.GetCandles(ctx, cfg.Data.ConfirmSymbol, cfg.Data.IntradayInterval, cfg.Data.IntradayLookback)
	if err != nil {
		return fmt.Errorf("fetching intraday data: %w", err)
	}

	riskOff, err := marketdata.ParseClockTime(cfg.Sweep.RiskOffTime)
	if err != nil {
		return err
	}

	model := strategy.NewSweepModel(strategy.SweepConfig{
		ADXThreshold:      cfg.Sweep.ADXThreshold,
		RetestBars:        cfg.Sweep.RetestBars,
		RiskMultiple:      cfg.Sweep.RiskMultiple,
		MaxAttemptsPerDay: cfg.Sweep.MaxAttemptsPerDay,
		RiskOffTime:       riskOff,
	})

	engine := backtest.NewSweepEngine(model, logger)
	trades := engine.Run(m5)
	summary := backtest.SummarizeSweep(trades)

	tradesPath := "backtest_sweep_trades.csv"
	summaryPath := "backtest_sweep_summary.csv"

	if err := backtest.WriteSweepTradesCSV(tradesPath, trades); err != nil {
		return err
	}
	if err := backtest.WriteSummaryCSV(summaryPath, summary.Rows()); err != nil {
		return err
	}

	logSummary(logger, summary.Rows())
	logger.Info().
		Str("trades_csv", tradesPath).
		Str("summary_csv", summaryPath).
		Msg("reports written")
	return nil
}

func logSummary(logger zerolog.Logger, rows [][2]string) {
	event := logger.Info()
	for _, row := range rows {
		event = event.Str(row[0], row[1])
	}
	event.Msg("backtest results")
}
