package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/spreadwatch/internal/report"
	"github.com/alanyoungcy/spreadwatch/internal/server"
	"github.com/alanyoungcy/spreadwatch/internal/server/handler"
	"github.com/alanyoungcy/spreadwatch/internal/server/ws"
)

// ReportMode performs one full pass and prints it: a spread table per asset,
// the history samples of the tracked assets, then the net arbitrage summary.
// The history is exported when an export target is configured.
func (a *App) ReportMode(ctx context.Context, deps *Dependencies) error {
	res := deps.Scanner.Scan(ctx)
	for _, scan := range res.Assets {
		if err := report.WriteSpreadTable(a.out, scan.Asset, scan.Spreads); err != nil {
			return err
		}
	}

	hc := a.cfg.History
	if err := deps.Sampler.Run(ctx, hc.Tracked, max(hc.Samples, 1), hc.Interval.Duration); err != nil {
		return err
	}
	if err := report.WriteHistorySummary(a.out, deps.Sampler.Reference(), deps.History.Snapshot(), hc.Tracked); err != nil {
		return err
	}

	if err := report.WriteArbitrageSummary(a.out, res.Opportunities()); err != nil {
		return err
	}
	return a.export(ctx, deps)
}

// ScanMode scans every scanner.interval until ctx is cancelled.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	return ignoreCanceled(deps.Scanner.Run(ctx, a.cfg.Scanner.Interval.Duration))
}

// SampleMode takes history.samples samples (forever when 0), prints the
// summary and exports the series. A cancelled run still exports what it
// collected.
func (a *App) SampleMode(ctx context.Context, deps *Dependencies) error {
	hc := a.cfg.History
	runErr := ignoreCanceled(deps.Sampler.Run(ctx, hc.Tracked, hc.Samples, hc.Interval.Duration))
	if err := report.WriteHistorySummary(a.out, deps.Sampler.Reference(), deps.History.Snapshot(), hc.Tracked); err != nil {
		return err
	}
	exportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	return errors.Join(runErr, a.export(exportCtx, deps))
}

// ServeMode runs the scanner and the sampler continuously behind the HTTP
// and WebSocket API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	startedAt := time.Now().UTC()

	hub := ws.NewHub(a.logger, ws.Config{Mode: a.cfg.Mode, Assets: deps.Sources.Assets(), StartedAt: startedAt})
	deps.Scanner.AddSink(hub)
	deps.Scanner.OnScan(hub.PublishScan)

	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(a.cfg.Mode, startedAt, hub),
		Quotes:  handler.NewQuoteHandler(deps.Scanner, deps.Aggregator, deps.Sources, a.logger),
		History: handler.NewHistoryHandler(deps.History, deps.Sampler.Reference(), a.logger),
	}
	if deps.OpportunityStore != nil {
		handlers.Arb = handler.NewArbHandler(deps.Scanner, deps.OpportunityStore, a.logger)
	} else {
		handlers.Arb = handler.NewArbHandler(deps.Scanner, nil, a.logger)
	}
	srv := server.NewServer(a.cfg.Server, handlers, hub, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error {
		return ignoreCanceled(deps.Scanner.Run(ctx, a.cfg.Scanner.Interval.Duration))
	})
	g.Go(func() error {
		hc := a.cfg.History
		return ignoreCanceled(deps.Sampler.Run(ctx, hc.Tracked, 0, hc.Interval.Duration))
	})
	return g.Wait()
}

func (a *App) export(ctx context.Context, deps *Dependencies) error {
	if a.cfg.History.ExportPath == "" && deps.BlobWriter == nil {
		return nil
	}
	if err := deps.Exporter.Export(ctx); err != nil {
		a.logger.ErrorContext(ctx, "history export failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
