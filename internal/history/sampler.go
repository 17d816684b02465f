package history

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/registry"
)

// QuoteFetcher fetches a single quote from one exchange.
type QuoteFetcher interface {
	Fetch(ctx context.Context, ex domain.Exchange, symbol string) (domain.Quote, error)
}

// SamplerConfig configures a Sampler.
type SamplerConfig struct {
	Sources   *registry.Sources
	Fetcher   QuoteFetcher
	Reference domain.Exchange
	Store     *Store
	Logger    *slog.Logger
}

// Sampler appends one mid-price point per tracked asset on every Sample call.
// It keeps no timing state of its own.
type Sampler struct {
	sources   *registry.Sources
	fetcher   QuoteFetcher
	reference domain.Exchange
	store     *Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewSampler creates a Sampler writing into cfg.Store.
func NewSampler(cfg SamplerConfig) *Sampler {
	return &Sampler{
		sources:   cfg.Sources,
		fetcher:   cfg.Fetcher,
		reference: cfg.Reference,
		store:     cfg.Store,
		logger:    cfg.Logger.With(slog.String("component", "history_sampler")),
		now:       time.Now,
	}
}

// Store returns the series the sampler appends to.
func (s *Sampler) Store() *Store { return s.store }

// Reference returns the pricing reference exchange.
func (s *Sampler) Reference() domain.Exchange { return s.reference }

// Sample fetches the reference quote of each tracked asset and appends its
// mid price. Assets the reference exchange does not list, and failed
// fetches, are skipped for this call. It returns the number of points
// appended.
func (s *Sampler) Sample(ctx context.Context, tracked []string) int {
	mids := make([]*domain.PricePoint, len(tracked))
	var g errgroup.Group
	for i, asset := range tracked {
		symbol, ok := s.sources.Symbol(asset, s.reference)
		if !ok {
			s.logger.DebugContext(ctx, "reference exchange does not list asset",
				slog.String("asset", asset),
				slog.String("exchange", string(s.reference)),
			)
			continue
		}
		g.Go(func() error {
			q, err := s.fetcher.Fetch(ctx, s.reference, symbol)
			if err != nil {
				s.logger.WarnContext(ctx, "history sample fetch failed",
					slog.String("asset", asset),
					slog.String("exchange", string(s.reference)),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mid, ok := q.Mid()
			if !ok {
				return nil
			}
			at := q.FetchedAt
			if at.IsZero() {
				at = s.now().UTC()
			}
			mids[i] = &domain.PricePoint{Time: at, MidPrice: mid}
			return nil
		})
	}
	_ = g.Wait()

	appended := 0
	for i, p := range mids {
		if p == nil {
			continue
		}
		s.store.Append(tracked[i], *p)
		appended++
	}
	return appended
}

// Run calls Sample with tracked `samples` times, waiting interval between
// calls. samples <= 0 samples until ctx is cancelled. It returns ctx.Err()
// when cancelled before finishing.
func (s *Sampler) Run(ctx context.Context, tracked []string, samples int, interval time.Duration) error {
	s.logger.Info("history sampler started",
		slog.Any("tracked", tracked),
		slog.Int("samples", samples),
		slog.Duration("interval", interval),
	)
	for i := 0; samples <= 0 || i < samples; i++ {
		if i > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		n := s.Sample(ctx, tracked)
		s.logger.Debug("history sample taken", slog.Int("sample", i+1), slog.Int("points", n))
	}
	return nil
}
