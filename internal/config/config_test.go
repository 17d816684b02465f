package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.Mode != "report" {
		t.Errorf("expected mode=report, got %s", cfg.Mode)
	}
	if len(cfg.Assets) != 5 {
		t.Fatalf("expected 5 default assets, got %d", len(cfg.Assets))
	}
	if cfg.Assets[0].Pair != "BTC/USD" || cfg.Assets[0].Symbols["Kraken"] != "XBTUSD" {
		t.Errorf("unexpected first asset: %+v", cfg.Assets[0])
	}
	if cfg.Fees["Bitstamp"] != 0.005 {
		t.Errorf("expected Bitstamp fee 0.005, got %g", cfg.Fees["Bitstamp"])
	}
	if cfg.Exchanges.Timeout.Duration != 8*time.Second {
		t.Errorf("expected 8s timeout, got %s", cfg.Exchanges.Timeout.Duration)
	}
	if cfg.History.ReferenceExchange != "Coinbase" {
		t.Errorf("expected Coinbase reference, got %s", cfg.History.ReferenceExchange)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := writeConfig(t, `
mode = "scan"

[exchanges]
timeout = "3s"

[fees]
Kraken = 0.0026

[scanner]
interval = "10s"
exclude_self_spread = true

[[assets]]
pair = "DOGE/USD"
[assets.symbols]
Binance = "DOGEUSDT"
OKX = "DOGE-USDT"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != "scan" {
		t.Errorf("expected mode=scan, got %s", cfg.Mode)
	}
	if cfg.Exchanges.Timeout.Duration != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.Exchanges.Timeout.Duration)
	}
	if len(cfg.Assets) != 1 || cfg.Assets[0].Pair != "DOGE/USD" {
		t.Fatalf("file assets should replace defaults, got %+v", cfg.Assets)
	}
	if len(cfg.Assets[0].Symbols) != 2 {
		t.Errorf("expected 2 symbols, got %v", cfg.Assets[0].Symbols)
	}
	if cfg.Fees["Kraken"] != 0.0026 {
		t.Errorf("expected Kraken fee override, got %g", cfg.Fees["Kraken"])
	}
	if cfg.Fees["Binance"] != 0.001 {
		t.Errorf("default fees should survive overlay, got %g", cfg.Fees["Binance"])
	}
	if !cfg.Scanner.ExcludeSelfSpread {
		t.Error("expected exclude_self_spread=true")
	}
	if cfg.Exchanges.BaseURLs["OKX"] != "https://www.okx.com" {
		t.Errorf("default base URL lost: %v", cfg.Exchanges.BaseURLs)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SPREADWATCH_MODE", "serve")
	t.Setenv("SPREADWATCH_HISTORY_TRACKED", "SOL/USD, XRP/USD")
	t.Setenv("SPREADWATCH_EXCHANGES_TIMEOUT", "2s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Mode != "serve" {
		t.Errorf("expected mode=serve, got %s", cfg.Mode)
	}
	if got := strings.Join(cfg.History.Tracked, ","); got != "SOL/USD,XRP/USD" {
		t.Errorf("unexpected tracked: %s", got)
	}
	if cfg.Exchanges.Timeout.Duration != 2*time.Second {
		t.Errorf("expected 2s timeout, got %s", cfg.Exchanges.Timeout.Duration)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "trade" }, `unknown mode "trade"`},
		{"zero timeout", func(c *Config) { c.Exchanges.Timeout.Duration = 0 }, "timeout must be > 0"},
		{"huge timeout", func(c *Config) { c.Exchanges.Timeout.Duration = 5 * time.Minute }, "must not exceed"},
		{"fee out of range", func(c *Config) { c.Fees["OKX"] = 1 }, "fees: OKX must be in [0, 1)"},
		{"negative fee", func(c *Config) { c.Fees["OKX"] = -0.1 }, "fees: OKX"},
		{"nan fee", func(c *Config) { c.Fees["OKX"] = math.NaN() }, "fees: OKX must be in [0, 1), got NaN"},
		{"infinite fee", func(c *Config) { c.Fees["OKX"] = math.Inf(1) }, "fees: OKX must be in [0, 1)"},
		{"unknown fee exchange", func(c *Config) { c.Fees["Bybit"] = 0.001 }, `unknown exchange "Bybit"`},
		{"empty symbol", func(c *Config) { c.Assets[0].Symbols["Gemini"] = " " }, "symbol for Gemini must not be empty"},
		{"duplicate pair", func(c *Config) { c.Assets = append(c.Assets, c.Assets[0]) }, "duplicate pair"},
		{"bad reference", func(c *Config) { c.History.ReferenceExchange = "Nowhere" }, "reference_exchange"},
		{"redis without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis: addr"},
		{"s3 without bucket", func(c *Config) { c.S3.Enabled = true; c.S3.Bucket = "" }, "s3: bucket"},
		{"serve without port", func(c *Config) { c.Mode = "serve"; c.Server.Port = 0 }, "server: port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Assets = DefaultAssets()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Notify.TelegramToken = "token"

	out := RedactedConfig(&cfg)
	if out.Redis.Password != "***" || out.Notify.TelegramToken != "***" {
		t.Fatalf("secrets not redacted: %+v", out.Notify)
	}
	if cfg.Redis.Password != "hunter2" {
		t.Fatal("original config mutated")
	}
	out.Fees["Binance"] = 0.5
	if cfg.Fees["Binance"] == 0.5 {
		t.Fatal("fee map shared with original")
	}
}
