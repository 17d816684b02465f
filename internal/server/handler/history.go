package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/spreadwatch/internal/domain"
	"github.com/alanyoungcy/spreadwatch/internal/history"
)

// HistoryHandler serves the sampled mid-price series.
type HistoryHandler struct {
	store     *history.Store
	reference domain.Exchange
	logger    *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler over store.
func NewHistoryHandler(store *history.Store, reference domain.Exchange, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, reference: reference, logger: logHandler(logger, "history")}
}

// Series returns the points of one asset, or of every asset without ?asset=.
// GET /api/history?asset=BTC/USD
func (h *HistoryHandler) Series(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"reference": h.reference}
	if asset := r.URL.Query().Get("asset"); asset != "" {
		pts := h.store.Points(asset)
		if pts == nil {
			pts = []domain.PricePoint{}
		}
		resp["asset"] = asset
		resp["points"] = pts
	} else {
		resp["series"] = h.store.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportCSV streams every series as CSV.
// GET /api/history/export
func (h *HistoryHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if err := h.store.WriteCSV(w); err != nil {
		h.logger.ErrorContext(r.Context(), "history export failed", slog.String("error", err.Error()))
	}
}
