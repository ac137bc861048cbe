package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the backtester and the
// webhook server.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Model   ModelConfig   `yaml:"model"`
	Session SessionConfig `yaml:"session"`
	Risk    RiskConfig    `yaml:"risk"`
	Tiers   TiersConfig   `yaml:"tiers"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Output  OutputConfig  `yaml:"output"`
}

// DataConfig describes what to download.
type DataConfig struct {
	Symbol           string `yaml:"symbol"`            // primary futures symbol, e.g. NQ=F
	ConfirmSymbol    string `yaml:"confirm_symbol"`    // correlated index for SMT, e.g. ES=F
	DailyLookback    string `yaml:"daily_lookback"`    // chart API range, e.g. 60d
	IntradayLookback string `yaml:"intraday_lookback"`
	IntradayInterval string `yaml:"intraday_interval"` // e.g. 5m
	Timezone         string `yaml:"timezone"`          // exchange timezone
	BaseURL          string `yaml:"base_url"`          // override for tests
}

// ModelConfig holds the gap-fade rule parameters.
type ModelConfig struct {
	StopBufferPoints   float64   `yaml:"stop_buffer_points"`
	ADXThreshold       float64   `yaml:"spring_filter_adx_threshold"`
	SMTLookback        int       `yaml:"smt_lookback"`
	WickRatio          float64   `yaml:"wick_significance_ratio"`
	EqualLowsTolerance float64   `yaml:"equal_lows_tolerance"`
	MinGapPoints       float64   `yaml:"fvg_min_gap_points"`
	LiquidityLookback  int       `yaml:"liquidity_lookback"`
	FibEighths         []float64 `yaml:"fib_eighths"`
	FibQuadrants       []float64 `yaml:"fib_quadrants"`
}

// SessionConfig bounds the intraday trading window.
type SessionConfig struct {
	Start string `yaml:"start"` // HH:MM
	End   string `yaml:"end"`
}

// RiskConfig holds account and sizing parameters.
type RiskConfig struct {
	AccountEquity      float64 `yaml:"account_equity"`
	MaxRiskPct         float64 `yaml:"max_risk_pct"`
	MaxDailyLossPct    float64 `yaml:"max_daily_loss_pct"`
	MicroContractValue float64 `yaml:"micro_contract_value"`
	MinContracts       int     `yaml:"min_position_size"`
	MaxContracts       int     `yaml:"max_position_size"`
}

// TiersConfig holds the partial-exit fractions.
type TiersConfig struct {
	TP1Pct float64 `yaml:"tp1_pct"`
	TP2Pct float64 `yaml:"tp2_pct"`
	TP3Pct float64 `yaml:"tp3_pct"`
}

// SweepConfig holds the daily sweep model parameters.
type SweepConfig struct {
	ADXThreshold      float64 `yaml:"adx_threshold"`
	RetestBars        int     `yaml:"retest_bars"`
	RiskMultiple      float64 `yaml:"risk_multiple"`
	MaxAttemptsPerDay int     `yaml:"max_attempts_per_day"`
	RiskOffTime       string  `yaml:"risk_off_time"` // HH:MM
}

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	WebhookSecret  string `yaml:"webhook_secret"`
	ProductionMode bool   `yaml:"production_mode"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	JSONFormat bool   `yaml:"json_format"`
}

// OutputConfig holds report destinations.
type OutputConfig struct {
	TradesCSV  string `yaml:"trades_csv"`
	SummaryCSV string `yaml:"summary_csv"`
}

// Default returns the configuration with the rule set's published
// parameters.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Symbol:           "NQ=F",
			ConfirmSymbol:    "ES=F",
			DailyLookback:    "60d",
			IntradayLookback: "60d",
			IntradayInterval: "5m",
			Timezone:         "America/New_York",
		},
		Model: ModelConfig{
			StopBufferPoints:   7.5,
			ADXThreshold:       20,
			SMTLookback:        20,
			WickRatio:          0.50,
			EqualLowsTolerance: 2.0,
			MinGapPoints:       1.0,
			LiquidityLookback:  100,
			FibEighths:         []float64{0.125, 0.25, 0.375, 0.50, 0.625, 0.75, 0.875},
			FibQuadrants:       []float64{0.25, 0.50, 0.75},
		},
		Session: SessionConfig{Start: "08:00", End: "16:00"},
		Risk: RiskConfig{
			AccountEquity:      10000,
			MaxRiskPct:         0.02,
			MaxDailyLossPct:    0.03,
			MicroContractValue: 2.0,
			MinContracts:       1,
			MaxContracts:       3,
		},
		Tiers: TiersConfig{TP1Pct: 0.50, TP2Pct: 0.30, TP3Pct: 0.20},
		Sweep: SweepConfig{
			ADXThreshold:      20,
			RetestBars:        12,
			RiskMultiple:      2.0,
			MaxAttemptsPerDay: 2,
			RiskOffTime:       "11:00",
		},
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Logging: LoggingConfig{Level: "info"},
		Output: OutputConfig{
			TradesCSV:  "backtest_trades.csv",
			SummaryCSV: "backtest_summary.csv",
		},
	}
}

// Load reads a YAML config file over the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override secrets and
// server settings without touching the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		c.Server.WebhookSecret = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the engines cannot run
// with.
func (c *Config) Validate() error {
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	if c.Data.ConfirmSymbol == "" {
		return fmt.Errorf("data.confirm_symbol is required")
	}
	if _, err := time.LoadLocation(c.Data.Timezone); err != nil {
		return fmt.Errorf("invalid data.timezone: %w", err)
	}
	if c.Risk.AccountEquity <= 0 {
		return fmt.Errorf("risk.account_equity must be positive")
	}
	if c.Risk.MaxRiskPct <= 0 || c.Risk.MaxRiskPct >= 1 {
		return fmt.Errorf("risk.max_risk_pct must be in (0, 1)")
	}
	if c.Risk.MaxDailyLossPct < 0 || c.Risk.MaxDailyLossPct >= 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be in [0, 1)")
	}
	if c.Risk.MinContracts > c.Risk.MaxContracts {
		return fmt.Errorf("risk.min_position_size exceeds max_position_size")
	}

	total := c.Tiers.TP1Pct + c.Tiers.TP2Pct + c.Tiers.TP3Pct
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("tier fractions must sum to 1.0, got %.2f", total)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range")
	}
	return nil
}

// Location resolves the configured exchange timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FibLevels merges the eighth and quadrant fractions.
func (c *ModelConfig) FibLevels() []float64 {
	levels := make([]float64, 0, len(c.FibEighths)+len(c.FibQuadrants))
	levels = append(levels, c.FibEighths...)
	levels = append(levels, c.FibQuadrants...)
	return levels
}
