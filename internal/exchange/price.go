package exchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var errMissingField = errors.New("missing field")

// maxPriceExponent bounds the decimal exponent accepted before conversion.
// Anything beyond it is far outside float64 range, and converting it costs
// time proportional to the exponent.
const maxPriceExponent = 400

// parsePrice decodes an exchange price that may be a JSON string or number.
// Missing, null, non-numeric, negative and non-finite values are rejected.
func parsePrice(field string, raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%s: %w", field, errMissingField)
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return 0, fmt.Errorf("%s: not numeric: %w", field, err)
	}
	if exp := d.Exponent(); exp > maxPriceExponent || exp < -maxPriceExponent {
		return 0, fmt.Errorf("%s: price exponent %d out of range", field, exp)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%s: negative price", field)
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s: price out of range", field)
	}
	return f, nil
}

// parseAskBid parses an ask/bid pair.
func parseAskBid(askField string, ask json.RawMessage, bidField string, bid json.RawMessage) (float64, float64, error) {
	a, err := parsePrice(askField, ask)
	if err != nil {
		return 0, 0, err
	}
	b, err := parsePrice(bidField, bid)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// firstLevelPrice returns the price element of the top level of a
// [[price, size, ...], ...] book side.
func firstLevelPrice(field string, levels [][]json.RawMessage) (json.RawMessage, error) {
	if len(levels) == 0 || len(levels[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", field, errMissingField)
	}
	return levels[0][0], nil
}
