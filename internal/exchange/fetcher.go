package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// Fetcher retrieves the top-of-book quote for one exchange-native symbol.
type Fetcher interface {
	Exchange() domain.Exchange
	Fetch(ctx context.Context, symbol string) (domain.Quote, error)
}

// adapter binds an exchange's endpoint layout and response parser to the
// shared HTTP client.
type adapter struct {
	exchange domain.Exchange
	baseURL  string
	client   *Client
	endpoint func(baseURL, symbol string) string
	parse    func(body []byte) (ask, bid float64, err error)
}

var _ Fetcher = (*adapter)(nil)

func (a *adapter) Exchange() domain.Exchange { return a.exchange }

// Fetch performs a single request. On any failure the returned error is a
// *domain.FetchError and the quote is the zero value.
func (a *adapter) Fetch(ctx context.Context, symbol string) (domain.Quote, error) {
	body, err := a.client.get(ctx, a.exchange, symbol, a.endpoint(a.baseURL, symbol))
	if err != nil {
		return domain.Quote{}, err
	}
	ask, bid, err := a.parse(body)
	if err != nil {
		return domain.Quote{}, &domain.FetchError{
			Exchange: a.exchange,
			Symbol:   symbol,
			Kind:     domain.ErrMalformedResponse,
			Err:      err,
		}
	}
	return domain.Quote{
		Exchange:  a.exchange,
		Ask:       ask,
		Bid:       bid,
		FetchedAt: a.client.now().UTC(),
		Valid:     true,
	}, nil
}

// NewFetcher constructs the adapter for ex rooted at baseURL.
func NewFetcher(ex domain.Exchange, client *Client, baseURL string) (Fetcher, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("exchange: %s: empty base URL", ex)
	}

	a := &adapter{exchange: ex, baseURL: baseURL, client: client}
	switch ex {
	case domain.ExchangeBinance:
		a.endpoint, a.parse = binanceEndpoint, parseBinance
	case domain.ExchangeCoinbase:
		a.endpoint, a.parse = coinbaseEndpoint, parseCoinbase
	case domain.ExchangeKraken:
		a.endpoint, a.parse = krakenEndpoint, parseKraken
	case domain.ExchangeBitstamp:
		a.endpoint, a.parse = bitstampEndpoint, parseBitstamp
	case domain.ExchangeGemini:
		a.endpoint, a.parse = geminiEndpoint, parseGemini
	case domain.ExchangeOKX:
		a.endpoint, a.parse = okxEndpoint, parseOKX
	default:
		return nil, &domain.UnknownExchangeError{Name: string(ex)}
	}
	return a, nil
}

// Table dispatches fetches to the adapter registered for each exchange.
type Table struct {
	fetchers map[domain.Exchange]Fetcher
}

// NewTable registers the given fetchers. A later fetcher for the same
// exchange replaces an earlier one.
func NewTable(fetchers ...Fetcher) *Table {
	t := &Table{fetchers: make(map[domain.Exchange]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		t.fetchers[f.Exchange()] = f
	}
	return t
}

// NewTableFromConfig builds one adapter per entry in cfg.BaseURLs, all
// sharing a client bounded by cfg.Timeout.
func NewTableFromConfig(cfg config.ExchangesConfig) (*Table, error) {
	client := NewClient(cfg.Timeout.Duration, cfg.UserAgent)
	fetchers := make([]Fetcher, 0, len(cfg.BaseURLs))
	for name, base := range cfg.BaseURLs {
		ex, err := domain.ParseExchange(name)
		if err != nil {
			return nil, fmt.Errorf("exchange: base_urls: %w", err)
		}
		f, err := NewFetcher(ex, client, base)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, f)
	}
	return NewTable(fetchers...), nil
}

// Fetch retrieves symbol from ex. An exchange without an adapter yields a
// FetchError wrapping ErrUnknownExchange.
func (t *Table) Fetch(ctx context.Context, ex domain.Exchange, symbol string) (domain.Quote, error) {
	f, ok := t.fetchers[ex]
	if !ok {
		return domain.Quote{}, &domain.FetchError{
			Exchange: ex,
			Symbol:   symbol,
			Kind:     domain.ErrUnknownExchange,
			Err:      &domain.UnknownExchangeError{Name: string(ex)},
		}
	}
	return f.Fetch(ctx, symbol)
}

// Exchanges lists the registered exchanges in canonical order.
func (t *Table) Exchanges() []domain.Exchange {
	out := make([]domain.Exchange, 0, len(t.fetchers))
	for _, ex := range domain.Exchanges {
		if _, ok := t.fetchers[ex]; ok {
			out = append(out, ex)
		}
	}
	return out
}
