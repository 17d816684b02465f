package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startHub(t *testing.T) (*Hub, string, context.CancelFunc) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), Config{Mode: "serve", Assets: []string{"BTC/USD"}})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	t.Cleanup(cancel)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func TestStatusIsFirstFrame(t *testing.T) {
	hub, url, _ := startHub(t)
	conn := dial(t, url)

	var env struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "status" || env.Payload["mode"] != "serve" {
		t.Fatalf("first frame = %+v", env)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount = %d, want 1", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestShutdownWithConnectedClients(t *testing.T) {
	hub, url, cancel := startHub(t)

	conns := make([]*websocket.Conn, 5)
	for i := range conns {
		conns[i] = dial(t, url)
	}
	cancel()

	for _, conn := range conns {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
	<-hub.done
	if n := hub.ClientCount(); n != 0 {
		t.Fatalf("ClientCount after shutdown = %d", n)
	}

	hub.Broadcast(ChannelArb, "arb_detected", json.RawMessage(`{}`))
}
