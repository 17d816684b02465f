// Package aggregator fans quote fetches for an asset out across every exchange
// that lists it and merges the outcomes into a QuoteSet.
package aggregator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/registry"
)

// QuoteFetcher fetches a single quote from one exchange.
// *exchange.Table satisfies it.
type QuoteFetcher interface {
	Fetch(ctx context.Context, ex domain.Exchange, symbol string) (domain.Quote, error)
}

// Aggregator collects quotes for configured assets. It holds no mutable state
// and is safe for concurrent use.
type Aggregator struct {
	sources     *registry.Sources
	fetcher     QuoteFetcher
	cache       domain.QuoteCache
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// Option customises an Aggregator.
type Option func(*Aggregator)

// WithQuoteCache writes every valid quote to c after aggregation.
func WithQuoteCache(c domain.QuoteCache) Option {
	return func(a *Aggregator) { a.cache = c }
}

// WithAssetConcurrency caps how many assets AggregateAll processes at once.
// n <= 0 removes the cap.
func WithAssetConcurrency(n int) Option {
	return func(a *Aggregator) { a.concurrency = n }
}

// New creates an Aggregator over sources using fetcher.
func New(sources *registry.Sources, fetcher QuoteFetcher, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		sources: sources,
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "aggregator")),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect fetches asset from every listing exchange concurrently and returns
// one FetchResult per listing, in registry order. It blocks until every fetch
// has completed or failed. Failed results carry a FailedQuote and the error.
func (a *Aggregator) Collect(ctx context.Context, asset string) []domain.FetchResult {
	srcs := a.sources.Lookup(asset)
	if len(srcs) == 0 {
		return nil
	}

	results := make([]domain.FetchResult, len(srcs))
	var g errgroup.Group
	for i, src := range srcs {
		g.Go(func() error {
			res := domain.FetchResult{Exchange: src.Exchange, Symbol: src.Symbol}
			q, err := a.fetcher.Fetch(ctx, src.Exchange, src.Symbol)
			if err != nil || !q.Valid {
				res.Quote = domain.FailedQuote(src.Exchange, asset, a.now().UTC())
				res.Err = err
			} else {
				q.Exchange = src.Exchange
				q.Asset = asset
				res.Quote = q
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Aggregate returns the valid quotes for asset. Failed fetches are logged and
// dropped. An unknown asset, or one whose fetches all failed, yields an empty
// set.
func (a *Aggregator) Aggregate(ctx context.Context, asset string) domain.QuoteSet {
	set := domain.QuoteSet{Asset: asset, TakenAt: a.now().UTC()}
	for _, res := range a.Collect(ctx, asset) {
		if !res.OK() {
			attrs := []any{
				slog.String("asset", asset),
				slog.String("exchange", string(res.Exchange)),
				slog.String("symbol", res.Symbol),
			}
			if res.Err != nil {
				attrs = append(attrs, slog.String("error", res.Err.Error()))
			}
			a.logger.WarnContext(ctx, "quote fetch failed", attrs...)
			continue
		}
		set.Quotes = append(set.Quotes, res.Quote)
	}

	if a.cache != nil {
		for _, q := range set.Quotes {
			if err := a.cache.SetQuote(ctx, q); err != nil {
				a.logger.WarnContext(ctx, "cache quote failed",
					slog.String("asset", asset),
					slog.String("exchange", string(q.Exchange)),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return set
}

// Cached returns the last quotes written to the cache for asset, one per
// listing exchange that has an entry. Without a cache it returns an empty set.
func (a *Aggregator) Cached(ctx context.Context, asset string) domain.QuoteSet {
	set := domain.QuoteSet{Asset: asset, TakenAt: a.now().UTC()}
	if a.cache == nil {
		return set
	}
	for _, src := range a.sources.Lookup(asset) {
		q, err := a.cache.GetQuote(ctx, asset, src.Exchange)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				a.logger.WarnContext(ctx, "read cached quote failed",
					slog.String("asset", asset),
					slog.String("exchange", string(src.Exchange)),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		if q.Valid {
			set.Quotes = append(set.Quotes, q)
		}
	}
	return set
}

// AggregateAll aggregates every asset and returns the sets keyed by asset.
// Assets are processed concurrently, bounded by WithAssetConcurrency.
func (a *Aggregator) AggregateAll(ctx context.Context, assets []string) map[string]domain.QuoteSet {
	sets := make([]domain.QuoteSet, len(assets))
	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, asset := range assets {
		g.Go(func() error {
			sets[i] = a.Aggregate(ctx, asset)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]domain.QuoteSet, len(assets))
	for _, set := range sets {
		out[set.Asset] = set
	}
	return out
}
