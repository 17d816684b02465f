// Package config defines the top-level configuration for spreadwatch and
// provides validation helpers.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by SPREADWATCH_* environment variables.
type Config struct {
	Exchanges ExchangesConfig    `toml:"exchanges"`
	Assets    []AssetConfig      `toml:"assets"`
	Fees      map[string]float64 `toml:"fees"`
	Scanner   ScannerConfig      `toml:"scanner"`
	History   HistoryConfig      `toml:"history"`
	Redis     RedisConfig        `toml:"redis"`
	Postgres  PostgresConfig     `toml:"postgres"`
	S3        S3Config           `toml:"s3"`
	Server    ServerConfig       `toml:"server"`
	Notify    NotifyConfig       `toml:"notify"`
	Mode      string             `toml:"mode"`
	LogLevel  string             `toml:"log_level"`
}

// ExchangesConfig holds the public REST endpoints and the HTTP behaviour
// shared by every exchange adapter.
type ExchangesConfig struct {
	// Timeout bounds every single fetch, including connect and body read.
	Timeout   duration          `toml:"timeout"`
	UserAgent string            `toml:"user_agent"`
	BaseURLs  map[string]string `toml:"base_urls"`
}

// AssetConfig maps one trading pair to the exchange-native symbols of the
// exchanges that list it.
type AssetConfig struct {
	Pair    string            `toml:"pair"`
	Symbols map[string]string `toml:"symbols"`
}

// ScannerConfig holds arbitrage scanning parameters.
type ScannerConfig struct {
	Interval          duration `toml:"interval"`
	ExcludeSelfSpread bool     `toml:"exclude_self_spread"`
	CSVPath           string   `toml:"csv_path"`
	// Concurrency caps how many assets are aggregated at once. 0 means no cap.
	Concurrency int `toml:"concurrency"`
}

// HistoryConfig holds mid-price sampling parameters.
type HistoryConfig struct {
	ReferenceExchange string   `toml:"reference_exchange"`
	Tracked           []string `toml:"tracked"`
	Samples           int      `toml:"samples"`
	Interval          duration `toml:"interval"`
	// MaxPoints bounds each asset's series. 0 keeps every point.
	MaxPoints  int    `toml:"max_points"`
	ExportPath string `toml:"export_path"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	QuoteTTL   duration `toml:"quote_ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey, when set, is required on every /api request except health.
	APIKey string `toml:"api_key"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultBaseURLs returns the public REST roots of every supported exchange.
func DefaultBaseURLs() map[string]string {
	return map[string]string{
		string(domain.ExchangeBinance):  "https://api.binance.com",
		string(domain.ExchangeCoinbase): "https://api.exchange.coinbase.com",
		string(domain.ExchangeKraken):   "https://api.kraken.com",
		string(domain.ExchangeBitstamp): "https://www.bitstamp.net",
		string(domain.ExchangeGemini):   "https://api.gemini.com",
		string(domain.ExchangeOKX):      "https://www.okx.com",
	}
}

// DefaultAssets returns the built-in asset map. It is applied by Load only
// when the configuration file declares no [[assets]].
func DefaultAssets() []AssetConfig {
	return []AssetConfig{
		{Pair: "BTC/USD", Symbols: map[string]string{
			"Binance": "BTCUSDT", "Coinbase": "BTC-USD", "Kraken": "XBTUSD",
			"Bitstamp": "btcusd", "Gemini": "btcusd", "OKX": "BTC-USDT",
		}},
		{Pair: "ETH/USD", Symbols: map[string]string{
			"Binance": "ETHUSDT", "Coinbase": "ETH-USD", "Kraken": "ETHUSD",
			"Bitstamp": "ethusd", "Gemini": "ethusd", "OKX": "ETH-USDT",
		}},
		{Pair: "SOL/USD", Symbols: map[string]string{
			"Binance": "SOLUSDT", "Coinbase": "SOL-USD", "Kraken": "SOLUSD", "OKX": "SOL-USDT",
		}},
		{Pair: "ADA/USD", Symbols: map[string]string{
			"Binance": "ADAUSDT", "Coinbase": "ADA-USD", "Kraken": "ADAUSD", "OKX": "ADA-USDT",
		}},
		{Pair: "XRP/USD", Symbols: map[string]string{
			"Binance": "XRPUSDT", "Coinbase": "XRP-USD", "Kraken": "XRPUSD",
			"Bitstamp": "xrpusd", "OKX": "XRP-USDT",
		}},
	}
}

// Defaults returns a Config populated with reasonable default values.
// Assets are left empty here; see DefaultAssets.
func Defaults() Config {
	return Config{
		Exchanges: ExchangesConfig{
			Timeout:   duration{8 * time.Second},
			UserAgent: "spreadwatch/1.0",
			BaseURLs:  DefaultBaseURLs(),
		},
		Fees: map[string]float64{
			"Binance":  0.001,
			"Coinbase": 0.0015,
			"Kraken":   0.002,
			"Bitstamp": 0.005,
			"Gemini":   0.003,
			"OKX":      0.001,
		},
		Scanner: ScannerConfig{
			Interval: duration{30 * time.Second},
			CSVPath:  "arb_opportunities.csv",
		},
		History: HistoryConfig{
			ReferenceExchange: "Coinbase",
			Tracked:           []string{"BTC/USD", "ETH/USD"},
			Samples:           5,
			Interval:          duration{5 * time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
			QuoteTTL:   duration{5 * time.Minute},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  4,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "spreadwatch",
			ForcePathStyle: true,
			Prefix:         "history",
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Notify: NotifyConfig{
			Events: []string{"arb_detected"},
		},
		Mode:     "report",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"report": true,
	"scan":   true,
	"sample": true,
	"serve":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// maxFetchTimeout caps exchanges.timeout so one slow venue cannot stall a scan.
const maxFetchTimeout = 60 * time.Second

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: report, scan, sample, serve)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Exchanges
	if c.Exchanges.Timeout.Duration <= 0 {
		errs = append(errs, "exchanges: timeout must be > 0")
	}
	if c.Exchanges.Timeout.Duration > maxFetchTimeout {
		errs = append(errs, fmt.Sprintf("exchanges: timeout must not exceed %s", maxFetchTimeout))
	}
	for name, u := range c.Exchanges.BaseURLs {
		if _, err := domain.ParseExchange(name); err != nil {
			errs = append(errs, "exchanges: base_urls: "+err.Error())
		}
		if strings.TrimSpace(u) == "" {
			errs = append(errs, fmt.Sprintf("exchanges: base_urls: %s must not be empty", name))
		}
	}

	// Assets
	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		pair := strings.TrimSpace(a.Pair)
		if pair == "" {
			errs = append(errs, fmt.Sprintf("assets[%d]: pair must not be empty", i))
			continue
		}
		if seen[pair] {
			errs = append(errs, fmt.Sprintf("assets: duplicate pair %q", pair))
		}
		seen[pair] = true
		for _, name := range sortedKeys(a.Symbols) {
			if _, err := domain.ParseExchange(name); err != nil {
				errs = append(errs, fmt.Sprintf("assets %s: %v", pair, err))
			}
			if strings.TrimSpace(a.Symbols[name]) == "" {
				errs = append(errs, fmt.Sprintf("assets %s: symbol for %s must not be empty", pair, name))
			}
		}
	}

	// Fees
	for _, name := range sortedKeys(c.Fees) {
		if _, err := domain.ParseExchange(name); err != nil {
			errs = append(errs, "fees: "+err.Error())
		}
		if f := c.Fees[name]; !(f >= 0 && f < 1) {
			errs = append(errs, fmt.Sprintf("fees: %s must be in [0, 1), got %g", name, f))
		}
	}

	// Scanner
	if c.Scanner.Interval.Duration <= 0 {
		errs = append(errs, "scanner: interval must be > 0")
	}
	if c.Scanner.Concurrency < 0 {
		errs = append(errs, "scanner: concurrency must be >= 0")
	}

	// History
	if _, err := domain.ParseExchange(c.History.ReferenceExchange); err != nil {
		errs = append(errs, "history: reference_exchange: "+err.Error())
	}
	if c.History.Samples < 0 {
		errs = append(errs, "history: samples must be >= 0")
	}
	if c.History.Interval.Duration < 0 {
		errs = append(errs, "history: interval must be >= 0")
	}
	if c.History.MaxPoints < 0 {
		errs = append(errs, "history: max_points must be >= 0")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	// Server
	if c.Server.Enabled || strings.EqualFold(c.Mode, "serve") {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// AssetPairs returns the configured pairs in declaration order.
func (c *Config) AssetPairs() []string {
	out := make([]string, 0, len(c.Assets))
	for _, a := range c.Assets {
		out = append(out, strings.TrimSpace(a.Pair))
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
