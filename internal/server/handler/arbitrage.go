package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
)

const timeLayout = time.RFC3339Nano

// OpportunityLister lists persisted opportunities.
// *postgres.OpportunityStore satisfies it.
type OpportunityLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ArbOpportunity, error)
	ListByAsset(ctx context.Context, asset string, limit int) ([]domain.ArbOpportunity, error)
}

// ArbHandler serves arbitrage endpoints.
type ArbHandler struct {
	scans  ScanSource
	store  OpportunityLister // optional; when nil, ListRecent returns 501
	logger *slog.Logger
}

// NewArbHandler creates an ArbHandler. store may be nil.
func NewArbHandler(scans ScanSource, store OpportunityLister, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{scans: scans, store: store, logger: logHandler(logger, "arbitrage")}
}

type listArbResponse struct {
	Opportunities []domain.ArbOpportunity `json:"opportunities"`
}

// Current returns the opportunities found by the latest scan.
// GET /api/arbitrage
func (h *ArbHandler) Current(w http.ResponseWriter, r *http.Request) {
	latest := h.scans.Latest()
	opps := latest.Opportunities()
	if opps == nil {
		opps = []domain.ArbOpportunity{}
	}
	resp := map[string]any{"opportunities": opps}
	if !latest.FinishedAt.IsZero() {
		resp["scanned_at"] = latest.FinishedAt.UTC().Format(timeLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRecent returns the most recent persisted opportunities, optionally
// restricted to one asset.
// GET /api/arbitrage/recent?asset=BTC/USD&limit=20
func (h *ArbHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusNotImplemented, "opportunity history is not enabled")
		return
	}
	limit := parseLimit(r, 20, 200)
	asset := r.URL.Query().Get("asset")

	var opps []domain.ArbOpportunity
	var err error
	if asset != "" {
		opps, err = h.store.ListByAsset(r.Context(), asset, limit)
	} else {
		opps, err = h.store.ListRecent(r.Context(), limit)
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list opportunities failed",
			slog.String("asset", asset),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list arbitrage opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbOpportunity{}
	}
	writeJSON(w, http.StatusOK, listArbResponse{Opportunities: opps})
}
