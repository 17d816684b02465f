package domain

import "strings"

// Exchange identifies a supported public market-data source.
type Exchange string

const (
	ExchangeBinance  Exchange = "Binance"
	ExchangeCoinbase Exchange = "Coinbase"
	ExchangeKraken   Exchange = "Kraken"
	ExchangeBitstamp Exchange = "Bitstamp"
	ExchangeGemini   Exchange = "Gemini"
	ExchangeOKX      Exchange = "OKX"
)

// Exchanges lists every supported exchange in canonical order. Source
// registries and quote sets follow this order.
var Exchanges = []Exchange{
	ExchangeBinance,
	ExchangeCoinbase,
	ExchangeKraken,
	ExchangeBitstamp,
	ExchangeGemini,
	ExchangeOKX,
}

// ParseExchange resolves a case-insensitive exchange name.
func ParseExchange(name string) (Exchange, error) {
	n := strings.TrimSpace(name)
	for _, ex := range Exchanges {
		if strings.EqualFold(string(ex), n) {
			return ex, nil
		}
	}
	return "", &UnknownExchangeError{Name: name}
}

// Rank returns the position of ex in the canonical order, or len(Exchanges)
// for an unknown exchange.
func (ex Exchange) Rank() int {
	for i, e := range Exchanges {
		if e == ex {
			return i
		}
	}
	return len(Exchanges)
}

func (ex Exchange) String() string { return string(ex) }
