package exchange

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// binanceBookTicker is the /api/v3/ticker/bookTicker response.
type binanceBookTicker struct {
	Symbol   string          `json:"symbol"`
	AskPrice json.RawMessage `json:"askPrice"`
	BidPrice json.RawMessage `json:"bidPrice"`
}

func binanceEndpoint(baseURL, symbol string) string {
	return baseURL + "/api/v3/ticker/bookTicker?symbol=" + url.QueryEscape(symbol)
}

func parseBinance(body []byte) (float64, float64, error) {
	var t binanceBookTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return 0, 0, fmt.Errorf("decode book ticker: %w", err)
	}
	return parseAskBid("askPrice", t.AskPrice, "bidPrice", t.BidPrice)
}
