package domain

import "time"

// ArbOpportunity is a net-of-fee cross-exchange arbitrage: buy at the lowest
// ask on BuyExchange and sell at the highest bid on SellExchange. Only
// opportunities with NetProfit > 0 are materialized.
type ArbOpportunity struct {
	ID           string    `json:"id"`
	Asset        string    `json:"asset"`
	BuyExchange  Exchange  `json:"buy_exchange"`
	AskPrice     float64   `json:"ask_price"`
	SellExchange Exchange  `json:"sell_exchange"`
	BidPrice     float64   `json:"bid_price"`
	GrossSpread  float64   `json:"gross_spread"`
	FeeCost      float64   `json:"fee_cost"`
	NetProfit    float64   `json:"net_profit"`
	DetectedAt   time.Time `json:"detected_at"`
}

// SelfSpread reports whether both legs are on the same exchange.
func (o ArbOpportunity) SelfSpread() bool {
	return o.BuyExchange == o.SellExchange
}

// PricePoint is a single mid-price observation in a history series.
type PricePoint struct {
	Time     time.Time `json:"time"`
	MidPrice float64   `json:"mid_price"`
}
