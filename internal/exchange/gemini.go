package exchange

import (
	"encoding/json"
	"fmt"
	"net/url"
)

type geminiTicker struct {
	Ask json.RawMessage `json:"ask"`
	Bid json.RawMessage `json:"bid"`
}

func geminiEndpoint(baseURL, symbol string) string {
	return baseURL + "/v1/pubticker/" + url.PathEscape(symbol)
}

func parseGemini(body []byte) (float64, float64, error) {
	var t geminiTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return 0, 0, fmt.Errorf("decode pubticker: %w", err)
	}
	return parseAskBid("ask", t.Ask, "bid", t.Bid)
}
