package exchange

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// coinbaseBook is the level-1 /products/{id}/book response. Each level is
// [price, size, num-orders].
type coinbaseBook struct {
	Asks [][]json.RawMessage `json:"asks"`
	Bids [][]json.RawMessage `json:"bids"`
}

func coinbaseEndpoint(baseURL, symbol string) string {
	return baseURL + "/products/" + url.PathEscape(symbol) + "/book?level=1"
}

func parseCoinbase(body []byte) (float64, float64, error) {
	var b coinbaseBook
	if err := json.Unmarshal(body, &b); err != nil {
		return 0, 0, fmt.Errorf("decode book: %w", err)
	}
	ask, err := firstLevelPrice("asks", b.Asks)
	if err != nil {
		return 0, 0, err
	}
	bid, err := firstLevelPrice("bids", b.Bids)
	if err != nil {
		return 0, 0, err
	}
	return parseAskBid("asks[0][0]", ask, "bids[0][0]", bid)
}
