package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// QuoteCache implements domain.QuoteCache using Redis hashes. Each quote is
// stored at "quote:{asset}:{exchange}" with fields ask, bid and ts (Unix
// nanoseconds), and expires after the configured TTL.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache. ttl <= 0 keeps entries until they are
// overwritten.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func quoteKey(asset string, ex domain.Exchange) string {
	return "quote:" + asset + ":" + string(ex)
}

func quoteFields(q domain.Quote) map[string]any {
	return map[string]any{
		"ask": strconv.FormatFloat(q.Ask, 'f', -1, 64),
		"bid": strconv.FormatFloat(q.Bid, 'f', -1, 64),
		"ts":  strconv.FormatInt(q.FetchedAt.UnixNano(), 10),
	}
}

func parseQuoteFields(asset string, ex domain.Exchange, vals map[string]string) (domain.Quote, error) {
	if len(vals) == 0 {
		return domain.Quote{}, domain.ErrNotFound
	}
	ask, err := strconv.ParseFloat(vals["ask"], 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("redis: parse ask %s: %w", quoteKey(asset, ex), err)
	}
	bid, err := strconv.ParseFloat(vals["bid"], 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("redis: parse bid %s: %w", quoteKey(asset, ex), err)
	}
	ts, err := strconv.ParseInt(vals["ts"], 10, 64)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("redis: parse ts %s: %w", quoteKey(asset, ex), err)
	}
	return domain.Quote{
		Exchange:  ex,
		Asset:     asset,
		Ask:       ask,
		Bid:       bid,
		FetchedAt: time.Unix(0, ts).UTC(),
		Valid:     true,
	}, nil
}

// SetQuote stores q. Invalid quotes are ignored.
func (qc *QuoteCache) SetQuote(ctx context.Context, q domain.Quote) error {
	if !q.Valid {
		return nil
	}
	key := quoteKey(q.Asset, q.Exchange)
	pipe := qc.rdb.TxPipeline()
	pipe.HSet(ctx, key, quoteFields(q))
	if qc.ttl > 0 {
		pipe.Expire(ctx, key, qc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", key, err)
	}
	return nil
}

// GetQuote returns the cached quote, or domain.ErrNotFound.
func (qc *QuoteCache) GetQuote(ctx context.Context, asset string, ex domain.Exchange) (domain.Quote, error) {
	key := quoteKey(asset, ex)
	vals, err := qc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("redis: get quote %s: %w", key, err)
	}
	return parseQuoteFields(asset, ex, vals)
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
