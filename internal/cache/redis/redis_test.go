package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

func TestQuoteKey(t *testing.T) {
	if got := quoteKey("BTC/USD", domain.ExchangeKraken); got != "quote:BTC/USD:Kraken" {
		t.Fatalf("quoteKey = %q", got)
	}
}

func TestParseQuoteFields(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC)
	q := domain.Quote{Exchange: domain.ExchangeOKX, Asset: "ETH/USD", Ask: 3001.25, Bid: 3000.75, FetchedAt: at, Valid: true}

	vals := make(map[string]string)
	for k, v := range quoteFields(q) {
		vals[k] = v.(string)
	}
	got, err := parseQuoteFields("ETH/USD", domain.ExchangeOKX, vals)
	if err != nil {
		t.Fatal(err)
	}
	if got != q {
		t.Fatalf("got %+v, want %+v", got, q)
	}

	if _, err := parseQuoteFields("ETH/USD", domain.ExchangeOKX, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("empty hash err = %v, want ErrNotFound", err)
	}
	vals["ask"] = "n/a"
	if _, err := parseQuoteFields("ETH/USD", domain.ExchangeOKX, vals); err == nil {
		t.Error("corrupt ask accepted")
	}
}

type fakeBus struct {
	published map[string][]byte
	streamed  map[string][]byte
	pubErr    error
}

func (b *fakeBus) Publish(_ context.Context, channel string, payload []byte) error {
	if b.pubErr != nil {
		return b.pubErr
	}
	b.published[channel] = payload
	return nil
}

func (b *fakeBus) StreamAppend(_ context.Context, stream string, payload []byte) error {
	b.streamed[stream] = payload
	return nil
}

func TestOpportunitySink(t *testing.T) {
	bus := &fakeBus{published: map[string][]byte{}, streamed: map[string][]byte{}}
	opp := domain.ArbOpportunity{ID: "abc", Asset: "BTC/USD", BuyExchange: domain.ExchangeOKX, SellExchange: domain.ExchangeBinance, NetProfit: 1.5}

	if err := NewOpportunitySink(bus).Record(context.Background(), opp); err != nil {
		t.Fatal(err)
	}
	var ev map[string]any
	if err := json.Unmarshal(bus.published[OpportunityChannel], &ev); err != nil {
		t.Fatalf("decode published: %v", err)
	}
	if ev["event"] != "arb_detected" || ev["id"] != "abc" || ev["buy_exchange"] != "OKX" || ev["net_profit"] != 1.5 {
		t.Errorf("event = %v", ev)
	}
	if string(bus.streamed[OpportunityStream]) != string(bus.published[OpportunityChannel]) {
		t.Error("stream payload differs from published payload")
	}

	bus.pubErr = errors.New("down")
	bus.streamed = map[string][]byte{}
	if err := NewOpportunitySink(bus).Record(context.Background(), opp); err == nil {
		t.Error("publish failure not reported")
	}
	if len(bus.streamed) != 1 {
		t.Error("stream append skipped after publish failure")
	}
}
