// Package arbitrage computes per-exchange spreads and net-of-fee
// cross-exchange arbitrage, and runs periodic scans that hand every
// profitable opportunity to a set of sinks.
package arbitrage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// QuoteSource aggregates quote sets for many assets.
// *aggregator.Aggregator satisfies it.
type QuoteSource interface {
	AggregateAll(ctx context.Context, assets []string) map[string]domain.QuoteSet
}

// Sink receives every opportunity a scan reports. Sinks are called
// sequentially in registration order, once per opportunity.
type Sink interface {
	Record(ctx context.Context, opp domain.ArbOpportunity) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, opp domain.ArbOpportunity) error

func (f SinkFunc) Record(ctx context.Context, opp domain.ArbOpportunity) error { return f(ctx, opp) }

// AssetScan is the outcome of one asset in one scan.
type AssetScan struct {
	Asset       string                 `json:"asset"`
	Set         domain.QuoteSet        `json:"-"`
	Spreads     []domain.SpreadRow     `json:"spreads"`
	Opportunity *domain.ArbOpportunity `json:"opportunity,omitempty"`
}

// ScanResult is the outcome of one pass over every asset.
type ScanResult struct {
	Assets     []AssetScan `json:"assets"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Opportunities returns the reported opportunities in asset order.
func (r ScanResult) Opportunities() []domain.ArbOpportunity {
	var out []domain.ArbOpportunity
	for _, a := range r.Assets {
		if a.Opportunity != nil {
			out = append(out, *a.Opportunity)
		}
	}
	return out
}

// Asset returns the scan of one asset.
func (r ScanResult) Asset(asset string) (AssetScan, bool) {
	for _, a := range r.Assets {
		if a.Asset == asset {
			return a, true
		}
	}
	return AssetScan{}, false
}

// ScannerConfig configures a Scanner.
type ScannerConfig struct {
	Assets []string
	Source QuoteSource
	Fees   FeeTable
	Sinks  []Sink
	// ExcludeSelfSpread drops opportunities whose buy and sell legs are on
	// the same exchange.
	ExcludeSelfSpread bool
	Logger            *slog.Logger
}

// Scanner aggregates every asset, runs the engine on each set and dispatches
// the resulting opportunities. The most recent result is retained for
// readers such as the HTTP API.
type Scanner struct {
	assets      []string
	source      QuoteSource
	fees        FeeTable
	sinks       []Sink
	observers   []func(ScanResult)
	excludeSelf bool
	logger      *slog.Logger

	mu     sync.RWMutex
	latest ScanResult
}

// NewScanner creates a Scanner.
func NewScanner(cfg ScannerConfig) *Scanner {
	return &Scanner{
		assets:      append([]string(nil), cfg.Assets...),
		source:      cfg.Source,
		fees:        cfg.Fees,
		sinks:       append([]Sink(nil), cfg.Sinks...),
		excludeSelf: cfg.ExcludeSelfSpread,
		logger:      cfg.Logger.With(slog.String("component", "arb_scanner")),
	}
}

// AddSink registers an additional sink. It must not be called concurrently
// with Scan.
func (s *Scanner) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// OnScan registers fn to be called with every finished scan. It must not be
// called concurrently with Scan.
func (s *Scanner) OnScan(fn func(ScanResult)) {
	s.observers = append(s.observers, fn)
}

// Scan performs one pass over every asset. Sink failures are logged and do
// not affect the result.
func (s *Scanner) Scan(ctx context.Context) ScanResult {
	res := ScanResult{StartedAt: time.Now().UTC()}
	sets := s.source.AggregateAll(ctx, s.assets)

	for _, asset := range s.assets {
		set := sets[asset]
		set.Asset = asset
		scan := AssetScan{Asset: asset, Set: set, Spreads: SpreadTable(set)}

		if opp, ok := FindArbitrage(set, s.fees); ok {
			if s.excludeSelf && opp.SelfSpread() {
				s.logger.DebugContext(ctx, "self-spread skipped",
					slog.String("asset", asset),
					slog.String("exchange", string(opp.BuyExchange)),
				)
			} else {
				scan.Opportunity = &opp
				s.logger.InfoContext(ctx, "arbitrage opportunity",
					slog.String("opp_id", opp.ID),
					slog.String("asset", asset),
					slog.String("buy", string(opp.BuyExchange)),
					slog.Float64("ask", opp.AskPrice),
					slog.String("sell", string(opp.SellExchange)),
					slog.Float64("bid", opp.BidPrice),
					slog.Float64("net_profit", opp.NetProfit),
				)
				s.dispatch(ctx, opp)
			}
		}
		res.Assets = append(res.Assets, scan)
	}
	res.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()

	for _, fn := range s.observers {
		fn(res)
	}
	return res
}

func (s *Scanner) dispatch(ctx context.Context, opp domain.ArbOpportunity) {
	for _, sink := range s.sinks {
		if err := sink.Record(ctx, opp); err != nil {
			s.logger.WarnContext(ctx, "arb sink failed",
				slog.String("opp_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Latest returns the result of the most recent Scan.
func (s *Scanner) Latest() ScanResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Run scans immediately and then every interval until ctx is cancelled.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) error {
	s.logger.Info("arb scanner started",
		slog.Int("assets", len(s.assets)),
		slog.Duration("interval", interval),
	)
	defer s.logger.Info("arb scanner stopped")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res := s.Scan(ctx)
		s.logger.Debug("scan complete",
			slog.Int("opportunities", len(res.Opportunities())),
			slog.Duration("took", res.FinishedAt.Sub(res.StartedAt)),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
