package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefault tests the shipped rule parameters.
func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Data.Symbol != "NQ=F" || cfg.Data.ConfirmSymbol != "ES=F" {
		t.Errorf("Unexpected default symbols %q/%q", cfg.Data.Symbol, cfg.Data.ConfirmSymbol)
	}
	if cfg.Model.StopBufferPoints != 7.5 {
		t.Errorf("Expected stop buffer 7.5, got %f", cfg.Model.StopBufferPoints)
	}
	if cfg.Risk.MaxDailyLossPct != 0.03 {
		t.Errorf("Expected daily loss 0.03, got %f", cfg.Risk.MaxDailyLossPct)
	}
	if got := cfg.Tiers.TP1Pct + cfg.Tiers.TP2Pct + cfg.Tiers.TP3Pct; got != 1.0 {
		t.Errorf("Expected tiers to sum to 1.0, got %f", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected default config to validate, got: %v", err)
	}
}

// TestFibLevels tests the merged gradient fractions.
func TestFibLevels(t *testing.T) {
	cfg := Default()
	levels := cfg.Model.FibLevels()
	if len(levels) != len(cfg.Model.FibEighths)+len(cfg.Model.FibQuadrants) {
		t.Errorf("Expected %d levels, got %d",
			len(cfg.Model.FibEighths)+len(cfg.Model.FibQuadrants), len(levels))
	}
}

// TestLoadOverridesDefaults tests that YAML values land over the
// defaults while untouched fields keep them.
func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
data:
  symbol: "YM=F"
  confirm_symbol: "ES=F"
risk:
  account_equity: 25000
session:
  start: "09:30"
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Data.Symbol != "YM=F" {
		t.Errorf("Expected overridden symbol YM=F, got %q", cfg.Data.Symbol)
	}
	if cfg.Risk.AccountEquity != 25000 {
		t.Errorf("Expected overridden equity 25000, got %f", cfg.Risk.AccountEquity)
	}
	if cfg.Session.Start != "09:30" {
		t.Errorf("Expected overridden session start, got %q", cfg.Session.Start)
	}
	if cfg.Model.StopBufferPoints != 7.5 {
		t.Errorf("Expected untouched stop buffer 7.5, got %f", cfg.Model.StopBufferPoints)
	}
}

// TestLoadMissingFile tests the read error path.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

// TestLoadEmptyPathUsesDefaults tests that no path means pure defaults.
func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Data.Symbol != "NQ=F" {
		t.Errorf("Expected default symbol, got %q", cfg.Data.Symbol)
	}
}

// TestEnvOverrides tests the deployment environment overrides.
func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.WebhookSecret != "s3cret" {
		t.Errorf("Expected secret from env, got %q", cfg.Server.WebhookSecret)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090 from env, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug from env, got %q", cfg.Logging.Level)
	}
}

// TestValidate tests each rejection rule.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing symbol", func(c *Config) { c.Data.Symbol = "" }},
		{"missing confirm symbol", func(c *Config) { c.Data.ConfirmSymbol = "" }},
		{"bad timezone", func(c *Config) { c.Data.Timezone = "Mars/Olympus" }},
		{"zero equity", func(c *Config) { c.Risk.AccountEquity = 0 }},
		{"risk pct too high", func(c *Config) { c.Risk.MaxRiskPct = 1.5 }},
		{"negative daily loss", func(c *Config) { c.Risk.MaxDailyLossPct = -0.1 }},
		{"inverted contract bounds", func(c *Config) { c.Risk.MinContracts = 5 }},
		{"tiers do not sum", func(c *Config) { c.Tiers.TP1Pct = 0.9 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}

// TestLocation tests timezone resolution and the UTC fallback.
func TestLocation(t *testing.T) {
	cfg := Default()
	if loc := cfg.Location(); loc.String() != "America/New_York" {
		t.Errorf("Expected America/New_York, got %s", loc)
	}

	cfg.Data.Timezone = "Mars/Olympus"
	if loc := cfg.Location(); loc.String() != "UTC" {
		t.Errorf("Expected UTC fallback, got %s", loc)
	}
}
