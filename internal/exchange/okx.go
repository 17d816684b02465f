package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// okxTicker is the /api/v5/market/ticker envelope. A non-"0" code carries
// an error message and no data.
type okxTicker struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		InstID string          `json:"instId"`
		AskPx  json.RawMessage `json:"askPx"`
		BidPx  json.RawMessage `json:"bidPx"`
	} `json:"data"`
}

func okxEndpoint(baseURL, symbol string) string {
	return baseURL + "/api/v5/market/ticker?instId=" + url.QueryEscape(symbol)
}

func parseOKX(body []byte) (float64, float64, error) {
	var t okxTicker
	if err := json.Unmarshal(body, &t); err != nil {
		return 0, 0, fmt.Errorf("decode ticker: %w", err)
	}
	if t.Code != "" && t.Code != "0" {
		return 0, 0, fmt.Errorf("okx error %s: %s", t.Code, t.Msg)
	}
	if len(t.Data) == 0 {
		return 0, 0, errors.New("data: empty")
	}
	return parseAskBid("askPx", t.Data[0].AskPx, "bidPx", t.Data[0].BidPx)
}
