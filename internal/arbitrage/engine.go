package arbitrage

import (
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// FeeTable returns the taker fee fraction charged by an exchange.
// registry.Fees satisfies it.
type FeeTable interface {
	Rate(ex domain.Exchange) float64
}

// SpreadTable returns one row per valid quote, in QuoteSet order, with
// Spread = Ask - Bid. An empty set yields an empty table.
func SpreadTable(set domain.QuoteSet) []domain.SpreadRow {
	rows := make([]domain.SpreadRow, 0, len(set.Quotes))
	for _, q := range set.Quotes {
		if !q.Valid {
			continue
		}
		rows = append(rows, domain.SpreadRow{
			Exchange: q.Exchange,
			Ask:      q.Ask,
			Bid:      q.Bid,
			Spread:   q.Spread(),
		})
	}
	return rows
}

// FindArbitrage buys at the lowest ask and sells at the highest bid among the
// valid quotes of set, net of both legs' taker fees. Exact ties keep the first
// quote in set order. It reports an opportunity only when the net profit is
// strictly positive. Buy and sell may be the same exchange.
func FindArbitrage(set domain.QuoteSet, fees FeeTable) (domain.ArbOpportunity, bool) {
	var buy, sell *domain.Quote
	for i := range set.Quotes {
		q := &set.Quotes[i]
		if !q.Valid {
			continue
		}
		if buy == nil || q.Ask < buy.Ask {
			buy = q
		}
		if sell == nil || q.Bid > sell.Bid {
			sell = q
		}
	}
	if buy == nil || sell == nil {
		return domain.ArbOpportunity{}, false
	}

	gross := sell.Bid - buy.Ask
	feeCost := buy.Ask*rate(fees, buy.Exchange) + sell.Bid*rate(fees, sell.Exchange)
	net := gross - feeCost
	if !(net > 0) {
		return domain.ArbOpportunity{}, false
	}

	detected := set.TakenAt
	if detected.IsZero() {
		detected = time.Now().UTC()
	}
	return domain.ArbOpportunity{
		ID:           uuid.NewString(),
		Asset:        set.Asset,
		BuyExchange:  buy.Exchange,
		AskPrice:     buy.Ask,
		SellExchange: sell.Exchange,
		BidPrice:     sell.Bid,
		GrossSpread:  gross,
		FeeCost:      feeCost,
		NetProfit:    net,
		DetectedAt:   detected,
	}, true
}

func rate(fees FeeTable, ex domain.Exchange) float64 {
	if fees == nil {
		return 0
	}
	return fees.Rate(ex)
}
