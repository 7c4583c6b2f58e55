package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"SwingSentinel/internal/model"
	"SwingSentinel/internal/strategy"
)

// DotEnvPath is the optional .env file read before environment overrides.
var DotEnvPath = ".env"

// Session backends.
const (
	SessionMemory = "memory"
	SessionFile   = "file"
	SessionRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken    string `yaml:"bot_token"`
		AlertChatID int64  `yaml:"alert_chat_id"`
	} `yaml:"telegram"`
	Assets       []model.Asset `yaml:"assets"`
	DefaultAsset string        `yaml:"default_asset"`
	Data         struct {
		Bars           int           `yaml:"bars"`
		MaxRetries     int           `yaml:"max_retries"`
		InitialBackoff time.Duration `yaml:"initial_backoff"`
		Timeout        time.Duration `yaml:"timeout"`
		BinanceBaseURL string        `yaml:"binance_base_url"`
		CSVDir         string        `yaml:"csv_dir"`
	} `yaml:"data"`
	Engine  strategy.Params `yaml:"engine"`
	Session struct {
		Backend       string        `yaml:"backend"`
		FilePath      string        `yaml:"file_path"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"session"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Scan struct {
		Cron   string   `yaml:"cron"`
		Assets []string `yaml:"assets"`
	} `yaml:"scan"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// DefaultAssets is the instrument list used when the config names none.
func DefaultAssets() []model.Asset {
	return []model.Asset{
		{Name: "USOIL", Symbol: "CL=F", Timeframe: "1h", Market: model.MarketYahoo, Label: "🛢 USOIL"},
		{Name: "BTC", Symbol: "BTCUSDT", Timeframe: "15m", Market: model.MarketBinanceFutures, Label: "₿ BTC"},
		{Name: "ETH", Symbol: "ETHUSDT", Timeframe: "15m", Market: model.MarketBinanceFutures, Label: "⟠ ETH"},
	}
}

// Load reads config from a YAML file, then .env, then applies environment
// variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Engine: strategy.DefaultParams()}
	// Preset so an explicit max_retries: 0 disables retries.
	cfg.Data.MaxRetries = 3

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(DotEnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("ignoring unreadable .env")
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_ALERT_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ALERT_CHAT_ID: %w", err)
		}
		c.Telegram.AlertChatID = id
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("DEFAULT_ASSET"); v != "" {
		c.DefaultAsset = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		c.Scan.Cron = v
	}
	if v := os.Getenv("SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Session.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Session.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATA_BARS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DATA_BARS: %w", err)
		}
		c.Data.Bars = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Assets) == 0 {
		c.Assets = DefaultAssets()
	}
	if c.DefaultAsset == "" {
		c.DefaultAsset = c.Assets[0].Name
	}
	if c.Data.Bars == 0 {
		c.Data.Bars = 300
	}
	if c.Data.InitialBackoff == 0 {
		c.Data.InitialBackoff = time.Second
	}
	if c.Data.Timeout == 0 {
		c.Data.Timeout = 30 * time.Second
	}
	if c.Data.CSVDir == "" {
		c.Data.CSVDir = "data/csv"
	}
	if c.Session.Backend == "" {
		c.Session.Backend = SessionMemory
	}
	if c.Session.FilePath == "" {
		c.Session.FilePath = "data/sessions.json"
	}
	if c.Session.RedisAddr == "" {
		c.Session.RedisAddr = "localhost:6379"
	}
	if len(c.Scan.Assets) == 0 {
		for _, a := range c.Assets {
			c.Scan.Assets = append(c.Scan.Assets, a.Name)
		}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Asset looks up a configured asset by name.
func (c *Config) Asset(name string) (model.Asset, bool) {
	for _, a := range c.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return model.Asset{}, false
}

// ScanAssets resolves scan.assets against the asset list.
func (c *Config) ScanAssets() []model.Asset {
	out := make([]model.Asset, 0, len(c.Scan.Assets))
	for _, name := range c.Scan.Assets {
		if a, ok := c.Asset(name); ok {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the asset list, engine parameters and backends.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if a.Name == "" || a.Symbol == "" {
			return fmt.Errorf("assets[%d]: name and symbol are required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("assets[%d]: duplicate name %q", i, a.Name)
		}
		seen[a.Name] = true
		switch a.Market {
		case model.MarketYahoo, model.MarketBinanceFutures, model.MarketCSV:
		default:
			return fmt.Errorf("assets[%d]: unknown market %q", i, a.Market)
		}
	}
	if _, ok := c.Asset(c.DefaultAsset); !ok {
		return fmt.Errorf("default_asset %q is not configured", c.DefaultAsset)
	}
	for _, name := range c.Scan.Assets {
		if _, ok := c.Asset(name); !ok {
			return fmt.Errorf("scan.assets: %q is not configured", name)
		}
	}
	if c.Data.MaxRetries < 0 {
		return fmt.Errorf("data.max_retries must not be negative")
	}
	if c.Data.Bars < 20 {
		return fmt.Errorf("data.bars must be at least 20")
	}
	if err := validateEngine(c.Engine); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	switch c.Session.Backend {
	case SessionMemory, SessionFile, SessionRedis:
	default:
		return fmt.Errorf("session.backend %q must be memory, file or redis", c.Session.Backend)
	}
	return nil
}

// ValidateTelegram checks the fields the bot needs to run.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Scan.Cron != "" && c.Telegram.AlertChatID == 0 {
		return fmt.Errorf("telegram.alert_chat_id is required when scan.cron is set")
	}
	return nil
}

func validateEngine(p strategy.Params) error {
	switch {
	case p.SwingMinSeparation < 1:
		return fmt.Errorf("swing_min_separation must be positive")
	case p.SwingMinSamples < 3:
		return fmt.Errorf("swing_min_samples must be at least 3")
	case p.TouchTolerancePct <= 0:
		return fmt.Errorf("touch_tolerance_pct must be positive")
	case p.StrengthThreshold <= 0:
		return fmt.Errorf("strength_threshold must be positive")
	case p.ATRPeriod < 1 || p.VolumeLookback < 1 || p.RSIPeriod < 1:
		return fmt.Errorf("atr_period, volume_lookback and rsi_period must be positive")
	case p.PremiumMinRR <= 0 || p.ContinuationMinRR <= 0:
		return fmt.Errorf("minimum risk/reward must be positive")
	case p.ConfidenceFloor < 0 || p.ConfidenceFloor > 100:
		return fmt.Errorf("confidence_floor must be within 0..100")
	case p.ContinuationConfidence < 0 || p.ContinuationConfidence > 100:
		return fmt.Errorf("continuation_confidence must be within 0..100")
	case p.ContinuationTargetATR <= 0:
		return fmt.Errorf("continuation_target_atr must be positive")
	}
	return nil
}
