package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/report"
)

// fakeExchanges serves a Binance book ticker and an OKX ticker whose prices
// leave a net-positive BTC/USD arbitrage: buy Binance at 100, sell OKX at 101.5.
func fakeExchanges(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/ticker/bookTicker", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"symbol":"BTCUSDT","askPrice":"100.00","bidPrice":"99.00"}`)
	})
	mux.HandleFunc("/api/v5/market/ticker", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"BTC-USDT","askPx":"102","bidPx":"101.5"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Mode = "report"
	cfg.Exchanges.BaseURLs = map[string]string{"Binance": baseURL, "OKX": baseURL}
	cfg.Assets = []config.AssetConfig{
		{Pair: "BTC/USD", Symbols: map[string]string{"Binance": "BTCUSDT", "OKX": "BTC-USDT"}},
		{Pair: "ETH/USD", Symbols: map[string]string{"Coinbase": "ETH-USD"}},
	}
	cfg.History.ReferenceExchange = "Binance"
	cfg.History.Tracked = []string{"BTC/USD"}
	cfg.History.Samples = 2
	cfg.History.Interval.Duration = time.Millisecond
	cfg.History.ExportPath = filepath.Join(dir, "history.csv")
	cfg.Scanner.CSVPath = filepath.Join(dir, "arb.csv")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return &cfg
}

func TestReportMode(t *testing.T) {
	srv := fakeExchanges(t)
	cfg := testConfig(t, srv.URL)

	var out bytes.Buffer
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), WithOutput(&out))
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"BTC/USD price comparison",
		"ETH/USD price comparison",
		"no quotes available",
		"Binance mid-price history",
		"Net arbitrage opportunities",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, report.NoOpportunities) {
		t.Errorf("report claims no opportunities:\n%s", text)
	}

	f, err := os.Open(cfg.Scanner.CSVPath)
	if err != nil {
		t.Fatalf("open csv log: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv log: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "BTC/USD" || rows[0][2] != "Binance" || rows[0][4] != "OKX" {
		t.Fatalf("csv rows = %v", rows)
	}

	hist, err := os.ReadFile(cfg.History.ExportPath)
	if err != nil {
		t.Fatalf("read history export: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(hist)), "\n"); len(lines) != 3 {
		t.Fatalf("history export has %d lines, want header + 2:\n%s", len(lines), hist)
	}
}

func TestScanModeStopsOnCancel(t *testing.T) {
	srv := fakeExchanges(t)
	cfg := testConfig(t, srv.URL)
	cfg.Mode = "scan"
	cfg.Scanner.Interval.Duration = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), WithOutput(io.Discard))
	defer a.Close()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestWireRejectsUnknownBaseURL(t *testing.T) {
	cfg := config.Defaults()
	cfg.Exchanges.BaseURLs = map[string]string{"Bitfinex": "http://x"}
	if _, _, err := Wire(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("expected error for unknown exchange")
	}
}
