package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	DataSource struct {
		Provider       string `yaml:"provider"` // yahoo, alpaca, rest or mock
		BaseURL        string `yaml:"base_url"`
		APIKey         string `yaml:"api_key"`
		APISecret      string `yaml:"api_secret"`
		Adjusted       *bool  `yaml:"adjusted"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		LookbackDays   int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Analysis struct {
		VolumeThreshold  float64 `yaml:"volume_threshold"`
		PriceThreshold   float64 `yaml:"price_threshold"`
		HoldingPeriod    int     `yaml:"holding_period"`
		WindowDays       int     `yaml:"window_days"`
		RestrictToWindow *bool   `yaml:"restrict_to_window"`
	} `yaml:"analysis"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		Driver     string `yaml:"driver"` // sqlite or postgres
		SQLitePath string `yaml:"sqlite_path"`
		DSN        string `yaml:"dsn"`
	} `yaml:"database"`
	Proxy     string `yaml:"proxy"`
	LogLevel  string `yaml:"log_level"`
	ExportDir string `yaml:"export_dir"`
}

// Load reads config from a YAML file, then a .env file, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	setString("SERVER_HOST", &c.Server.Host)
	setInt("PORT", &c.Server.Port)
	setString("DATA_PROVIDER", &c.DataSource.Provider)
	setString("DATA_BASE_URL", &c.DataSource.BaseURL)
	setString("APCA_API_KEY_ID", &c.DataSource.APIKey)
	setString("APCA_API_SECRET_KEY", &c.DataSource.APISecret)
	setInt("FETCH_TIMEOUT_SECONDS", &c.DataSource.TimeoutSeconds)
	setFloat("VOLUME_THRESHOLD", &c.Analysis.VolumeThreshold)
	setFloat("PRICE_THRESHOLD", &c.Analysis.PriceThreshold)
	setInt("HOLDING_PERIOD", &c.Analysis.HoldingPeriod)
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("CRON_DAILY", &c.Schedule.DailyCron)
	setString("DB_DRIVER", &c.Database.Driver)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("DATABASE_URL", &c.Database.DSN)
	setString("HTTPS_PROXY", &c.Proxy)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("EXPORT_DIR", &c.ExportDir)

	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Watchlist = append(c.Watchlist, strings.ToUpper(s))
			}
		}
	}
	if v := os.Getenv("ADJUSTED_PRICES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DataSource.Adjusted = &b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Adjusted == nil {
		adjusted := true
		c.DataSource.Adjusted = &adjusted
	}
	if c.DataSource.TimeoutSeconds == 0 {
		c.DataSource.TimeoutSeconds = 30
	}
	if c.DataSource.LookbackDays == 0 {
		c.DataSource.LookbackDays = 30
	}
	if c.Analysis.VolumeThreshold == 0 {
		c.Analysis.VolumeThreshold = 200
	}
	if c.Analysis.PriceThreshold == 0 {
		c.Analysis.PriceThreshold = 2.0
	}
	if c.Analysis.HoldingPeriod == 0 {
		c.Analysis.HoldingPeriod = 10
	}
	if c.Analysis.WindowDays == 0 {
		c.Analysis.WindowDays = 365
	}
	if c.Analysis.RestrictToWindow == nil {
		restrict := true
		c.Analysis.RestrictToWindow = &restrict
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 22 * * 1-5"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/breakoutlab.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
}

// FetchTimeout is the bound on a single provider request.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.DataSource.TimeoutSeconds) * time.Second
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and api_secret are required for alpaca")
		}
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for rest")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if c.DataSource.TimeoutSeconds < 0 {
		return fmt.Errorf("data_source.timeout_seconds must not be negative")
	}
	if c.DataSource.LookbackDays < 0 {
		return fmt.Errorf("data_source.lookback_days must not be negative")
	}
	if c.Analysis.VolumeThreshold < 100 {
		return fmt.Errorf("analysis.volume_threshold must be at least 100")
	}
	if c.Analysis.PriceThreshold < 0 {
		return fmt.Errorf("analysis.price_threshold must not be negative")
	}
	if c.Analysis.HoldingPeriod < 1 {
		return fmt.Errorf("analysis.holding_period must be at least 1")
	}
	if c.Analysis.WindowDays < 1 {
		return fmt.Errorf("analysis.window_days must be positive")
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
