package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/spreadwatch/internal/aggregator"
	"github.com/alanyoungcy/spreadwatch/internal/arbitrage"
	s3blob "github.com/alanyoungcy/spreadwatch/internal/blob/s3"
	"github.com/alanyoungcy/spreadwatch/internal/cache/redis"
	"github.com/alanyoungcy/spreadwatch/internal/config"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/exchange"
	"github.com/alanyoungcy/spreadwatch/internal/history"
	"github.com/alanyoungcy/spreadwatch/internal/notify"
	"github.com/alanyoungcy/spreadwatch/internal/registry"
	"github.com/alanyoungcy/spreadwatch/internal/report"
	"github.com/alanyoungcy/spreadwatch/internal/store/postgres"
)

// Dependencies bundles everything the run modes need. It is constructed by
// Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Sources    *registry.Sources
	Fees       registry.Fees
	Exchanges  *exchange.Table
	Aggregator *aggregator.Aggregator
	Scanner    *arbitrage.Scanner

	History  *history.Store
	Sampler  *history.Sampler
	Exporter *history.Exporter

	CSVLog *report.CSVLog

	// Optional back-ends; nil when disabled.
	QuoteCache       domain.QuoteCache
	SignalBus        domain.SignalBus
	OpportunityStore *postgres.OpportunityStore
	BlobWriter       domain.BlobWriter
	Notifier         *notify.Notifier
}

// Wire constructs every dependency from cfg. Optional back-ends are only
// connected when their section is enabled. Opportunity sinks are attached to
// the scanner in a fixed order: CSV log, Postgres, Redis, notifier.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{}

	sources, err := registry.FromConfig(cfg.Assets)
	if err != nil {
		return fail(fmt.Errorf("wire: %w", err))
	}
	fees, err := registry.NewFees(cfg.Fees)
	if err != nil {
		return fail(fmt.Errorf("wire: %w", err))
	}
	table, err := exchange.NewTableFromConfig(cfg.Exchanges)
	if err != nil {
		return fail(fmt.Errorf("wire: %w", err))
	}
	deps.Sources, deps.Fees, deps.Exchanges = sources, fees, table

	// --- Redis ---
	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = rc.Close() })
		deps.QuoteCache = redis.NewQuoteCache(rc, cfg.Redis.QuoteTTL.Duration)
		deps.SignalBus = redis.NewSignalBus(rc)
	}

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := pg.RunMigrations(ctx); err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
		}
		deps.OpportunityStore = postgres.NewOpportunityStore(pg.Pool())
	}

	// --- S3 ---
	if cfg.S3.Enabled {
		sc, err := s3blob.New(ctx, cfg.S3)
		if err != nil {
			return fail(fmt.Errorf("wire: s3: %w", err))
		}
		deps.BlobWriter = s3blob.NewWriter(sc)
	}

	// --- Notifications ---
	if n, ok := notify.FromConfig(cfg.Notify, logger); ok {
		deps.Notifier = n
	}

	var aggOpts []aggregator.Option
	if deps.QuoteCache != nil {
		aggOpts = append(aggOpts, aggregator.WithQuoteCache(deps.QuoteCache))
	}
	aggOpts = append(aggOpts, aggregator.WithAssetConcurrency(cfg.Scanner.Concurrency))
	deps.Aggregator = aggregator.New(sources, table, logger, aggOpts...)

	var sinks []arbitrage.Sink
	if cfg.Scanner.CSVPath != "" {
		deps.CSVLog = report.NewCSVLog(cfg.Scanner.CSVPath)
		sinks = append(sinks, deps.CSVLog)
	}
	if deps.OpportunityStore != nil {
		sinks = append(sinks, deps.OpportunityStore)
	}
	if deps.SignalBus != nil {
		sinks = append(sinks, redis.NewOpportunitySink(deps.SignalBus))
	}
	if deps.Notifier != nil {
		sinks = append(sinks, deps.Notifier)
	}
	deps.Scanner = arbitrage.NewScanner(arbitrage.ScannerConfig{
		Assets:            sources.Assets(),
		Source:            deps.Aggregator,
		Fees:              fees,
		Sinks:             sinks,
		ExcludeSelfSpread: cfg.Scanner.ExcludeSelfSpread,
		Logger:            logger,
	})

	reference, err := domain.ParseExchange(cfg.History.ReferenceExchange)
	if err != nil {
		return fail(fmt.Errorf("wire: history: %w", err))
	}
	deps.History = history.NewStore(cfg.History.MaxPoints)
	deps.Sampler = history.NewSampler(history.SamplerConfig{
		Sources:   sources,
		Fetcher:   table,
		Reference: reference,
		Store:     deps.History,
		Logger:    logger,
	})
	deps.Exporter = history.NewExporter(deps.History, cfg.History.ExportPath, deps.BlobWriter, cfg.S3.Prefix, logger)

	return deps, cleanup, nil
}
