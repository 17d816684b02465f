package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/spreadwatch/internal/arbitrage"
	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/history"
	"github.com/alanyoungcy/spreadwatch/internal/server/handler"
	"github.com/alanyoungcy/spreadwatch/internal/server/ws"
)

type emptyScans struct{}

func (emptyScans) Latest() arbitrage.ScanResult { return arbitrage.ScanResult{} }

type noLive struct{}

func (noLive) Aggregate(_ context.Context, asset string) domain.QuoteSet {
	return domain.QuoteSet{Asset: asset}
}

func (noLive) Cached(_ context.Context, asset string) domain.QuoteSet {
	return domain.QuoteSet{Asset: asset}
}

type oneAsset struct{}

func (oneAsset) Assets() []string      { return []string{"BTC/USD"} }
func (oneAsset) Has(asset string) bool { return asset == "BTC/USD" }

func newTestRoutes(t *testing.T, apiKey string, hub *ws.Hub) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := Handlers{
		Health:  handler.NewHealthHandler("serve", time.Now(), nil),
		Quotes:  handler.NewQuoteHandler(emptyScans{}, noLive{}, oneAsset{}, logger),
		Arb:     handler.NewArbHandler(emptyScans{}, nil, logger),
		History: handler.NewHistoryHandler(history.NewStore(10), domain.ExchangeKraken, logger),
	}
	return Routes(config.ServerConfig{APIKey: apiKey}, handlers, hub, logger)
}

func TestRoutes(t *testing.T) {
	srv := httptest.NewServer(newTestRoutes(t, "k", nil))
	defer srv.Close()

	tests := []struct {
		path string
		key  string
		want int
	}{
		{path: "/api/health", want: http.StatusOK},
		{path: "/api/assets", want: http.StatusUnauthorized},
		{path: "/api/assets", key: "k", want: http.StatusOK},
		{path: "/api/quotes", key: "k", want: http.StatusOK},
		{path: "/api/spreads", key: "k", want: http.StatusOK},
		{path: "/api/arbitrage", key: "k", want: http.StatusOK},
		{path: "/api/arbitrage/recent", key: "k", want: http.StatusNotImplemented},
		{path: "/api/history", key: "k", want: http.StatusOK},
		{path: "/api/history/export", key: "k", want: http.StatusOK},
		{path: "/api/nope", key: "k", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+tt.path, nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestWebSocketReceivesOpportunity(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), ws.Config{Mode: "serve"})
	go hub.Run(ctx)

	srv := httptest.NewServer(newTestRoutes(t, "", hub))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var status struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&status); err != nil || status.Type != "status" {
		t.Fatalf("initial frame = %+v, err %v", status, err)
	}

	// Registration happens before the status frame is queued, so the client
	// is subscribed by now.
	hub.Record(ctx, domain.ArbOpportunity{ID: "opp-9", Asset: "BTC/USD"})

	var msg struct {
		Type    string                `json:"type"`
		Payload domain.ArbOpportunity `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "arb_detected" || msg.Payload.ID != "opp-9" {
		t.Fatalf("frame = %+v", msg)
	}
}
