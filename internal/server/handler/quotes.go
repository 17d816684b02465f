package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/spreadwatch/internal/arbitrage"
	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

// ScanSource exposes the most recent scan. *arbitrage.Scanner satisfies it.
type ScanSource interface {
	Latest() arbitrage.ScanResult
}

// LiveAggregator fetches a fresh quote set on demand and reads back the
// cached quotes. *aggregator.Aggregator satisfies it.
type LiveAggregator interface {
	Aggregate(ctx context.Context, asset string) domain.QuoteSet
	Cached(ctx context.Context, asset string) domain.QuoteSet
}

// AssetLister reports the configured assets.
type AssetLister interface {
	Assets() []string
	Has(asset string) bool
}

// QuoteHandler serves quotes and spread tables.
type QuoteHandler struct {
	scans  ScanSource
	live   LiveAggregator
	assets AssetLister
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(scans ScanSource, live LiveAggregator, assets AssetLister, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{scans: scans, live: live, assets: assets, logger: logHandler(logger, "quotes")}
}

type quoteView struct {
	Exchange  domain.Exchange `json:"exchange"`
	Ask       float64         `json:"ask"`
	Bid       float64         `json:"bid"`
	Mid       float64         `json:"mid"`
	FetchedAt string          `json:"fetched_at"`
}

type quoteSetView struct {
	Asset   string      `json:"asset"`
	TakenAt string      `json:"taken_at,omitempty"`
	Source  string      `json:"source,omitempty"`
	Quotes  []quoteView `json:"quotes"`
}

func toQuoteSetView(set domain.QuoteSet) quoteSetView {
	v := quoteSetView{Asset: set.Asset, Quotes: []quoteView{}}
	if !set.TakenAt.IsZero() {
		v.TakenAt = set.TakenAt.UTC().Format(timeLayout)
	}
	for _, q := range set.Quotes {
		mid, _ := q.Mid()
		v.Quotes = append(v.Quotes, quoteView{
			Exchange:  q.Exchange,
			Ask:       q.Ask,
			Bid:       q.Bid,
			Mid:       mid,
			FetchedAt: q.FetchedAt.UTC().Format(timeLayout),
		})
	}
	return v
}

// ListAssets returns the configured asset pairs.
// GET /api/assets
func (h *QuoteHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"assets": h.assets.Assets()})
}

// requireAsset reads ?asset= and rejects unknown pairs. An empty value
// returns "" with ok=true so callers can list every asset.
func (h *QuoteHandler) requireAsset(w http.ResponseWriter, r *http.Request) (string, bool) {
	asset := r.URL.Query().Get("asset")
	if asset != "" && !h.assets.Has(asset) {
		writeError(w, http.StatusNotFound, "unknown asset")
		return "", false
	}
	return asset, true
}

// Quotes returns the quotes of the latest scan, or a live fetch with
// ?live=true (which requires ?asset=). A live fetch that yields no quotes
// falls back to the cached ones.
// GET /api/quotes?asset=BTC/USD&live=true
func (h *QuoteHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.requireAsset(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("live") == "true" {
		if asset == "" {
			writeError(w, http.StatusBadRequest, "live quotes require an asset")
			return
		}
		v := toQuoteSetView(h.live.Aggregate(r.Context(), asset))
		v.Source = "live"
		if len(v.Quotes) == 0 {
			if cached := h.live.Cached(r.Context(), asset); len(cached.Quotes) > 0 {
				v = toQuoteSetView(cached)
				v.Source = "cache"
			}
		}
		writeJSON(w, http.StatusOK, v)
		return
	}

	latest := h.scans.Latest()
	views := []quoteSetView{}
	for _, a := range latest.Assets {
		if asset != "" && a.Asset != asset {
			continue
		}
		views = append(views, toQuoteSetView(a.Set))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sets": views})
}

// Spreads returns the spread tables of the latest scan.
// GET /api/spreads?asset=BTC/USD
func (h *QuoteHandler) Spreads(w http.ResponseWriter, r *http.Request) {
	asset, ok := h.requireAsset(w, r)
	if !ok {
		return
	}
	latest := h.scans.Latest()
	out := []arbitrage.AssetScan{}
	for _, a := range latest.Assets {
		if asset != "" && a.Asset != asset {
			continue
		}
		if a.Spreads == nil {
			a.Spreads = []domain.SpreadRow{}
		}
		a.Opportunity = nil
		out = append(out, a)
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": out})
}
