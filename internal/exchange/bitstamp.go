package exchange

import (
	"encoding/json"
	"fmt"
	"net/url"
)

type bitstampTicker struct {
	Ask json.RawMessage `json:"ask"`
	Bid json.RawMessage `json:"bid"`
}

func bitstampEndpoint(baseURL, symbol string) string {
	return baseURL + "/api/v2/ticker/" + url.PathEscape(symbol)
}

func parseBitstamp(body []byte) (float64, float64, error) {
	var t bitstampTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return 0, 0, fmt.Errorf("decode ticker: %w", err)
	}
	return parseAskBid("ask", t.Ask, "bid", t.Bid)
}
