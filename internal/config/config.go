package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SourceCfg struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type CustomToken struct {
	ChainID  int64  `yaml:"chain_id"`
	Symbol   string `yaml:"symbol"`
	Address  string `yaml:"address"`
	Decimals uint8  `yaml:"decimals"`
}

type Config struct {
	Network  string `yaml:"network"`
	LogLevel string `yaml:"log_level"`

	Store struct {
		Backend string `yaml:"backend"` // file | redis
		Path    string `yaml:"path"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			DB       int    `yaml:"db"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"store"`

	Sources struct {
		Enabled   []string  `yaml:"enabled"`
		TimeoutMs int       `yaml:"timeout_ms"`
		ZeroX     SourceCfg `yaml:"zero_x"`
		OneInch   SourceCfg `yaml:"one_inch"`
		Paraswap  SourceCfg `yaml:"paraswap"`
		OpenOcean SourceCfg `yaml:"open_ocean"`
		CowSwap   SourceCfg `yaml:"cowswap"`
	} `yaml:"sources"`

	Swap struct {
		SlippagePct      float64 `yaml:"slippage_pct"`
		GasPriceGwei     float64 `yaml:"gas_price_gwei"`
		ReceiptTimeoutMs int     `yaml:"receipt_timeout_ms"`
	} `yaml:"swap"`

	Price struct {
		Source            string  `yaml:"source"` // coinbase | binance
		CoinbaseURL       string  `yaml:"coinbase_url"`
		BinanceURL        string  `yaml:"binance_url"`
		BinanceWsURL      string  `yaml:"binance_ws_url"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"price"`

	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
		Job            string `yaml:"job"`
	} `yaml:"metrics"`

	Tokens []CustomToken `yaml:"tokens"`
}

// DefaultPath is $HOME/.config/chamber/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "chamber", "config.yaml")
}

// Load reads the YAML file at path. A missing file yields the defaults.
// A .env file in the working directory and CHAMBER_* variables override file values.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("CHAMBER_NETWORK", &c.Network)
	str("CHAMBER_LOG_LEVEL", &c.LogLevel)
	str("CHAMBER_STORE_BACKEND", &c.Store.Backend)
	str("CHAMBER_STORE_PATH", &c.Store.Path)
	str("CHAMBER_REDIS_ADDR", &c.Store.Redis.Addr)
	str("CHAMBER_REDIS_PASSWORD", &c.Store.Redis.Password)
	str("CHAMBER_ZERO_X_API_KEY", &c.Sources.ZeroX.APIKey)
	str("CHAMBER_ONE_INCH_API_KEY", &c.Sources.OneInch.APIKey)
	str("CHAMBER_PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)
	if v := os.Getenv("CHAMBER_SOURCE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Sources.TimeoutMs = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Network == "" {
		c.Network = "1"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(filepath.Dir(DefaultPath()), "store.yaml")
	}
	if c.Store.Redis.Key == "" {
		c.Store.Redis.Key = "chamber:config"
	}
	if c.Sources.TimeoutMs == 0 {
		c.Sources.TimeoutMs = 8000
	}
	if len(c.Sources.Enabled) == 0 {
		c.Sources.Enabled = []string{"0x", "1inch", "paraswap", "openocean", "cowswap"}
	}
	if c.Sources.ZeroX.BaseURL == "" {
		c.Sources.ZeroX.BaseURL = "https://api.0x.org/swap/v1"
	}
	if c.Sources.OneInch.BaseURL == "" {
		c.Sources.OneInch.BaseURL = "https://api.1inch.io/v5.0"
	}
	if c.Sources.Paraswap.BaseURL == "" {
		c.Sources.Paraswap.BaseURL = "https://apiv5.paraswap.io"
	}
	if c.Sources.OpenOcean.BaseURL == "" {
		c.Sources.OpenOcean.BaseURL = "https://open-api.openocean.finance/v3"
	}
	if c.Sources.CowSwap.BaseURL == "" {
		c.Sources.CowSwap.BaseURL = "https://api.cow.fi"
	}
	if c.Swap.SlippagePct == 0 {
		c.Swap.SlippagePct = 1
	}
	if c.Swap.GasPriceGwei == 0 {
		c.Swap.GasPriceGwei = 5
	}
	if c.Swap.ReceiptTimeoutMs == 0 {
		c.Swap.ReceiptTimeoutMs = 180_000
	}
	if c.Price.Source == "" {
		c.Price.Source = "coinbase"
	}
	if c.Price.CoinbaseURL == "" {
		c.Price.CoinbaseURL = "https://api.coinbase.com/v2"
	}
	if c.Price.BinanceURL == "" {
		c.Price.BinanceURL = "https://api1.binance.com/api/v3"
	}
	if c.Price.BinanceWsURL == "" {
		c.Price.BinanceWsURL = "wss://stream.binance.com:9443/stream"
	}
	if c.Price.RequestsPerSecond == 0 {
		c.Price.RequestsPerSecond = 5
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "chamber"
	}
}

func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.Sources.TimeoutMs) * time.Millisecond
}

func (c *Config) ReceiptTimeout() time.Duration {
	return time.Duration(c.Swap.ReceiptTimeoutMs) * time.Millisecond
}
