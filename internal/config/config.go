package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Market source names.
const (
	SourcePaper   = "paper"
	SourceGateway = "gateway"
)

// Config holds all application configuration.
type Config struct {
	Market struct {
		Source  string `yaml:"source"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Proxy   string `yaml:"proxy"`
	} `yaml:"market"`
	Paper    Paper    `yaml:"paper"`
	Strategy Strategy `yaml:"strategy"`
	Loop     struct {
		Interval   time.Duration `yaml:"interval"`
		DigestCron string        `yaml:"digest_cron"`
		PIDFile    string        `yaml:"pid_file"`
	} `yaml:"loop"`
	Log      Log `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Hub struct {
		Addr string `yaml:"addr"`
	} `yaml:"hub"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
}

// Paper configures the in-process simulated market.
type Paper struct {
	Seed         int64         `yaml:"seed"`
	Symbols      []string      `yaml:"symbols"`
	StartingCash float64       `yaml:"starting_cash"`
	AdvancedData bool          `yaml:"advanced_data"`
	Commission   float64       `yaml:"commission"`
	StepInterval time.Duration `yaml:"step_interval"`
}

// Strategy holds the allocation thresholds.
type Strategy struct {
	LongEntry       float64 `yaml:"long_entry"`
	ShortEntry      float64 `yaml:"short_entry"`
	LongHold        float64 `yaml:"long_hold"`
	ShortHold       float64 `yaml:"short_hold"`
	CapitalReserve  float64 `yaml:"capital_reserve"`
	MinTradeCapital float64 `yaml:"min_trade_capital"`
}

// Log configures the process logger.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // console | json
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads .env, the YAML file at path, then applies environment overrides
// and defaults. A missing file yields a default config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Path resolves the config file location from the flag value and CONFIG_PATH.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TRADER_MARKET_URL"); v != "" {
		c.Market.BaseURL = v
		c.Market.Source = SourceGateway
	}
	if v := os.Getenv("TRADER_API_KEY"); v != "" {
		c.Market.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Market.Proxy = v
	}
	if v := os.Getenv("TRADER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

func (c *Config) applyDefaults() {
	if c.Market.Source == "" {
		c.Market.Source = SourcePaper
	}
	c.Market.Source = strings.ToLower(c.Market.Source)

	if len(c.Paper.Symbols) == 0 {
		c.Paper.Symbols = []string{"ECP", "MGCP", "BLD", "CLRK", "OMTK", "FSIG", "KGI", "FLCM", "STM", "DCOMM", "HLS", "VITA", "ICRS", "UNV", "AERO", "OMN", "SLRS", "GPH", "NVMD", "WDS", "LXO", "RHOC", "APHE", "SYSC", "CTK", "NTLK", "OMGA", "FNS", "JGN", "SGC", "CTYS", "MDYN", "TITN"}
	}
	if c.Paper.StartingCash == 0 {
		c.Paper.StartingCash = 1_000_000_000
	}
	if c.Paper.Commission == 0 {
		c.Paper.Commission = 100_000
	}
	if c.Paper.StepInterval == 0 {
		c.Paper.StepInterval = 6 * time.Second
	}

	s := &c.Strategy
	if s.LongEntry == 0 {
		s.LongEntry = 0.6
	}
	if s.ShortEntry == 0 {
		s.ShortEntry = 0.4
	}
	if s.LongHold == 0 {
		s.LongHold = 0.55
	}
	if s.ShortHold == 0 {
		s.ShortHold = 0.45
	}
	if s.CapitalReserve == 0 {
		s.CapitalReserve = 50_000_000
	}
	if s.MinTradeCapital == 0 {
		s.MinTradeCapital = 25_000_000
	}

	if c.Loop.Interval == 0 {
		c.Loop.Interval = 6 * time.Second
	}
	if c.Loop.DigestCron == "" {
		c.Loop.DigestCron = "0 */10 * * * *"
	}
	if c.Loop.PIDFile == "" {
		c.Loop.PIDFile = "data/trader.pid"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 14
	}

	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/ticktrader.db"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.Market.Source {
	case SourcePaper:
		if len(c.Paper.Symbols) == 0 {
			errs = append(errs, errors.New("paper.symbols must not be empty"))
		}
		if c.Paper.StartingCash <= 0 {
			errs = append(errs, errors.New("paper.starting_cash must be positive"))
		}
	case SourceGateway:
		if c.Market.BaseURL == "" {
			errs = append(errs, errors.New("market.base_url is required for the gateway source"))
		}
	default:
		errs = append(errs, fmt.Errorf("market.source %q must be %q or %q", c.Market.Source, SourcePaper, SourceGateway))
	}

	s := c.Strategy
	for _, th := range []struct {
		name string
		v    float64
	}{
		{"long_entry", s.LongEntry}, {"short_entry", s.ShortEntry},
		{"long_hold", s.LongHold}, {"short_hold", s.ShortHold},
	} {
		if th.v < 0 || th.v > 1 {
			errs = append(errs, fmt.Errorf("strategy.%s must be within [0, 1], got %v", th.name, th.v))
		}
	}
	if s.ShortEntry >= s.LongEntry {
		errs = append(errs, errors.New("strategy.short_entry must be below strategy.long_entry"))
	}
	if s.ShortHold > s.LongHold {
		errs = append(errs, errors.New("strategy.short_hold must not exceed strategy.long_hold"))
	}
	if s.CapitalReserve < 0 || s.MinTradeCapital < 0 {
		errs = append(errs, errors.New("strategy capital limits must not be negative"))
	}

	if c.Loop.Interval <= 0 {
		errs = append(errs, errors.New("loop.interval must be positive"))
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Loop.DigestCron); err != nil {
		errs = append(errs, fmt.Errorf("loop.digest_cron: %w", err))
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id must be set together"))
	}

	return errors.Join(errs...)
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
