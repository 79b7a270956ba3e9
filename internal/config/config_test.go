package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataSource.Provider != "yahoo" || !*cfg.DataSource.Adjusted {
		t.Errorf("unexpected data source defaults: %+v", cfg.DataSource)
	}
	if cfg.Analysis.VolumeThreshold != 200 || cfg.Analysis.PriceThreshold != 2.0 || cfg.Analysis.HoldingPeriod != 10 {
		t.Errorf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if !*cfg.Analysis.RestrictToWindow || cfg.Analysis.WindowDays != 365 {
		t.Errorf("unexpected window defaults: %+v", cfg.Analysis)
	}
	if cfg.DataSource.LookbackDays != 30 || cfg.FetchTimeout() != 30*time.Second {
		t.Errorf("unexpected fetch defaults: %+v", cfg.DataSource)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
data_source:
  provider: mock
  adjusted: false
analysis:
  volume_threshold: 300
  restrict_to_window: false
watchlist: [AAPL, MSFT]
`)
	t.Setenv("HOLDING_PERIOD", "5")
	t.Setenv("WATCHLIST", "tsla, nvda")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.Addr())
	}
	if cfg.DataSource.Provider != "mock" || *cfg.DataSource.Adjusted {
		t.Errorf("yaml data source not applied: %+v", cfg.DataSource)
	}
	if cfg.Analysis.VolumeThreshold != 300 || *cfg.Analysis.RestrictToWindow {
		t.Errorf("yaml analysis not applied: %+v", cfg.Analysis)
	}
	if cfg.Analysis.HoldingPeriod != 5 {
		t.Errorf("env override not applied, holding=%d", cfg.Analysis.HoldingPeriod)
	}
	if strings.Join(cfg.Watchlist, ",") != "TSLA,NVDA" {
		t.Errorf("unexpected watchlist %v", cfg.Watchlist)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"alpaca without keys", func(c *Config) { c.DataSource.Provider = "alpaca" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest" }},
		{"low volume threshold", func(c *Config) { c.Analysis.VolumeThreshold = 50 }},
		{"negative price threshold", func(c *Config) { c.Analysis.PriceThreshold = -1 }},
		{"zero holding", func(c *Config) { c.Analysis.HoldingPeriod = -1 }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"telegram half set", func(c *Config) { c.Telegram.BotToken = "x" }},
	}
	for _, tt := range tests {
		cfg := &Config{}
		cfg.applyDefaults()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
