package domain

import "time"

// Quote is the best ask and bid observed on one exchange for one asset.
// Valid is false for a failed fetch, in which case Ask and Bid are zero and
// must not be read.
type Quote struct {
	Exchange  Exchange
	Asset     string
	Ask       float64
	Bid       float64
	FetchedAt time.Time
	Valid     bool
}

// FailedQuote returns the Failed outcome for an exchange. It never carries
// price data.
func FailedQuote(ex Exchange, asset string, at time.Time) Quote {
	return Quote{Exchange: ex, Asset: asset, FetchedAt: at}
}

// Spread returns Ask - Bid. Crossed quotes yield a negative spread.
func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// Mid returns the midpoint of Ask and Bid and whether it is defined.
func (q Quote) Mid() (float64, bool) {
	if !q.Valid {
		return 0, false
	}
	return (q.Ask + q.Bid) / 2, true
}

// FetchResult is the outcome of a single fetch attempt, successful or not.
type FetchResult struct {
	Exchange Exchange
	Symbol   string
	Quote    Quote
	Err      error
}

// OK reports whether the fetch produced a usable quote.
func (r FetchResult) OK() bool {
	return r.Err == nil && r.Quote.Valid
}

// QuoteSet holds the valid quotes for one asset at one sampling instant.
// Failed fetches are never included.
type QuoteSet struct {
	Asset   string
	Quotes  []Quote
	TakenAt time.Time
}

// Len returns the number of quotes in the set.
func (s QuoteSet) Len() int { return len(s.Quotes) }

// Empty reports whether no exchange produced a valid quote.
func (s QuoteSet) Empty() bool { return len(s.Quotes) == 0 }

// SpreadRow is a single line of a spread table.
type SpreadRow struct {
	Exchange Exchange `json:"exchange"`
	Ask      float64  `json:"ask"`
	Bid      float64  `json:"bid"`
	Spread   float64  `json:"spread"`
}
