package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type recordingSender struct {
	name   string
	titles []string
	err    error
}

func (r *recordingSender) Send(_ context.Context, title, _ string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func (r *recordingSender) Name() string { return r.name }

var testOpp = domain.ArbOpportunity{
	Asset: "BTC/USD", BuyExchange: domain.ExchangeOKX, AskPrice: 98,
	SellExchange: domain.ExchangeBinance, BidPrice: 99, GrossSpread: 1, NetProfit: 1,
}

func TestNotifierFiltersEvents(t *testing.T) {
	s := &recordingSender{name: "rec"}
	n := NewNotifier([]Sender{s}, []string{EventArbDetected}, quiet())

	if err := n.Notify(context.Background(), "other", "t", "m"); err != nil {
		t.Fatal(err)
	}
	if err := n.Record(context.Background(), testOpp); err != nil {
		t.Fatal(err)
	}
	if len(s.titles) != 1 || !strings.Contains(s.titles[0], "BTC/USD") {
		t.Fatalf("titles = %v", s.titles)
	}
}

func TestNotifierContinuesAfterFailure(t *testing.T) {
	bad := &recordingSender{name: "bad", err: io.ErrUnexpectedEOF}
	good := &recordingSender{name: "good"}
	err := NewNotifier([]Sender{bad, good}, nil, quiet()).Record(context.Background(), testOpp)
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("err = %v, want failure naming bad sender", err)
	}
	if len(good.titles) != 1 {
		t.Error("second sender skipped")
	}
}

func TestTelegramSender(t *testing.T) {
	var gotPath string
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	s := NewTelegramSender("TOKEN", "42")
	s.apiBase = srv.URL
	if err := s.Send(context.Background(), "Title", "body"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if got["chat_id"] != "42" || got["text"] != "*Title*\nbody" {
		t.Errorf("payload = %v", got)
	}
}

func TestDiscordSenderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewDiscordSender(srv.URL).Send(context.Background(), "t", "m")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want status 429", err)
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(config.NotifyConfig{}, quiet()); ok {
		t.Error("notifier built without channels")
	}
	n, ok := FromConfig(config.NotifyConfig{DiscordWebhookURL: "http://example.invalid", TelegramToken: "x"}, quiet())
	if !ok || len(n.senders) != 1 || n.senders[0].Name() != "discord" {
		t.Fatalf("senders = %+v", n)
	}
}
