package arbitrage

import (
	"math"
	"testing"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/registry"
)

const (
	exA = domain.ExchangeBinance
	exB = domain.ExchangeKraken
	exC = domain.ExchangeOKX
)

func quote(ex domain.Exchange, ask, bid float64) domain.Quote {
	return domain.Quote{Exchange: ex, Asset: "BTC/USD", Ask: ask, Bid: bid, Valid: true}
}

func set(quotes ...domain.Quote) domain.QuoteSet {
	return domain.QuoteSet{Asset: "BTC/USD", Quotes: quotes, TakenAt: time.Unix(1700000000, 0).UTC()}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFindArbitrageZeroFees(t *testing.T) {
	opp, ok := FindArbitrage(set(quote(exA, 100, 99), quote(exB, 98, 97)), registry.Fees{})
	if !ok {
		t.Fatal("expected an opportunity")
	}
	if opp.BuyExchange != exB || opp.AskPrice != 98 {
		t.Errorf("buy = %s@%v, want %s@98", opp.BuyExchange, opp.AskPrice, exB)
	}
	if opp.SellExchange != exA || opp.BidPrice != 99 {
		t.Errorf("sell = %s@%v, want %s@99", opp.SellExchange, opp.BidPrice, exA)
	}
	if !approx(opp.GrossSpread, 1) || opp.FeeCost != 0 || !approx(opp.NetProfit, 1) {
		t.Errorf("gross/fee/net = %v/%v/%v, want 1/0/1", opp.GrossSpread, opp.FeeCost, opp.NetProfit)
	}
	if opp.Asset != "BTC/USD" || opp.ID == "" {
		t.Errorf("asset/id = %q/%q", opp.Asset, opp.ID)
	}
	if !opp.DetectedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("DetectedAt = %v, want set time", opp.DetectedAt)
	}
}

func TestFindArbitrageFeesEraseProfit(t *testing.T) {
	fees := registry.Fees{exA: 0.01, exB: 0.01}
	if opp, ok := FindArbitrage(set(quote(exA, 100, 99), quote(exB, 98, 97)), fees); ok {
		t.Fatalf("unexpected opportunity %+v", opp)
	}
}

func TestFindArbitrageFeeCost(t *testing.T) {
	fees := registry.Fees{exA: 0.001, exB: 0.002}
	opp, ok := FindArbitrage(set(quote(exA, 110, 109), quote(exB, 100, 99)), fees)
	if !ok {
		t.Fatal("expected an opportunity")
	}
	wantFee := 100*0.002 + 109*0.001
	if !approx(opp.FeeCost, wantFee) || !approx(opp.NetProfit, 9-wantFee) {
		t.Errorf("fee/net = %v/%v, want %v/%v", opp.FeeCost, opp.NetProfit, wantFee, 9-wantFee)
	}
}

func TestFindArbitrageNegativeGross(t *testing.T) {
	if _, ok := FindArbitrage(set(quote(exA, 100, 99), quote(exB, 101, 98)), nil); ok {
		t.Fatal("negative gross spread reported as opportunity")
	}
}

func TestFindArbitrageZeroNetIsNotReported(t *testing.T) {
	if _, ok := FindArbitrage(set(quote(exA, 100, 99), quote(exB, 99, 98)), nil); ok {
		t.Fatal("zero net profit reported as opportunity")
	}
}

func TestFindArbitrageTiesFirstSeen(t *testing.T) {
	s := set(quote(exA, 101, 100), quote(exB, 98, 100), quote(exC, 98, 97))
	for i := 0; i < 10; i++ {
		opp, ok := FindArbitrage(s, nil)
		if !ok {
			t.Fatal("expected an opportunity")
		}
		if opp.BuyExchange != exB {
			t.Fatalf("run %d: buy = %s, want first-seen %s", i, opp.BuyExchange, exB)
		}
		if opp.SellExchange != exA {
			t.Fatalf("run %d: sell = %s, want first-seen %s", i, opp.SellExchange, exA)
		}
	}
}

func TestFindArbitrageSelfSpread(t *testing.T) {
	opp, ok := FindArbitrage(set(quote(exA, 100, 99), quote(exB, 97, 101)), nil)
	if !ok {
		t.Fatal("crossed quote should be reported")
	}
	if !opp.SelfSpread() || opp.BuyExchange != exB {
		t.Errorf("opp = %+v, want self-spread on %s", opp, exB)
	}
	if !approx(opp.NetProfit, 4) {
		t.Errorf("net = %v, want 4", opp.NetProfit)
	}
}

func TestFindArbitrageEmptyAndInvalid(t *testing.T) {
	if _, ok := FindArbitrage(domain.QuoteSet{Asset: "BTC/USD"}, nil); ok {
		t.Error("empty set produced an opportunity")
	}
	failed := domain.FailedQuote(exA, "BTC/USD", time.Now())
	if _, ok := FindArbitrage(set(failed), nil); ok {
		t.Error("failed quote produced an opportunity")
	}
}

func TestFindArbitrageNeverNonPositive(t *testing.T) {
	fees := registry.Fees{exA: 0.001, exB: 0.005, exC: 0.002}
	prices := []float64{95, 97.5, 99, 100, 100.2, 101, 103}
	for _, a1 := range prices {
		for _, b1 := range prices {
			for _, a2 := range prices {
				for _, b2 := range prices {
					opp, ok := FindArbitrage(set(quote(exA, a1, b1), quote(exC, a2, b2)), fees)
					if ok && opp.NetProfit <= 0 {
						t.Fatalf("non-positive opportunity %+v", opp)
					}
				}
			}
		}
	}
}

func TestSpreadTable(t *testing.T) {
	if rows := SpreadTable(domain.QuoteSet{}); len(rows) != 0 {
		t.Fatalf("empty set rows = %v", rows)
	}

	failed := domain.FailedQuote(exC, "BTC/USD", time.Now())
	rows := SpreadTable(set(quote(exA, 100, 99.5), failed, quote(exB, 98, 99)))
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	if rows[0].Exchange != exA || !approx(rows[0].Spread, 0.5) {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Exchange != exB || !approx(rows[1].Spread, -1) {
		t.Errorf("row 1 = %+v, crossed quote should give negative spread", rows[1])
	}
}
