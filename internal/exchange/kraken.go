package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// krakenTicker is the /0/public/Ticker response. Kraken keys the result by
// its own internal pair name, which differs from the requested one.
type krakenTicker struct {
	Error  []string                     `json:"error"`
	Result map[string]krakenTickerEntry `json:"result"`
}

// krakenTickerEntry holds [price, whole-lot-volume, lot-volume] arrays.
type krakenTickerEntry struct {
	A []json.RawMessage `json:"a"`
	B []json.RawMessage `json:"b"`
}

func krakenEndpoint(baseURL, symbol string) string {
	return baseURL + "/0/public/Ticker?pair=" + url.QueryEscape(symbol)
}

func parseKraken(body []byte) (float64, float64, error) {
	var t krakenTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return 0, 0, fmt.Errorf("decode ticker: %w", err)
	}
	if len(t.Error) > 0 {
		return 0, 0, fmt.Errorf("kraken error: %s", strings.Join(t.Error, "; "))
	}
	if len(t.Result) == 0 {
		return 0, 0, errors.New("result: empty")
	}

	keys := make([]string, 0, len(t.Result))
	for k := range t.Result {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	entry := t.Result[keys[0]]

	if len(entry.A) == 0 {
		return 0, 0, fmt.Errorf("a: %w", errMissingField)
	}
	if len(entry.B) == 0 {
		return 0, 0, fmt.Errorf("b: %w", errMissingField)
	}
	return parseAskBid("a[0]", entry.A[0], "b[0]", entry.B[0])
}
