package handler

import (
	"net/http"
	"time"
)

// ClientCounter reports connected WebSocket clients. *ws.Hub satisfies it.
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	mode      string
	startedAt time.Time
	clients   ClientCounter // optional
}

// NewHealthHandler creates a HealthHandler reporting the run mode. clients
// may be nil.
func NewHealthHandler(mode string, startedAt time.Time, clients ClientCounter) *HealthHandler {
	return &HealthHandler{mode: mode, startedAt: startedAt, clients: clients}
}

// HealthCheck responds with a simple JSON status indicating the server is alive.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":         "ok",
		"mode":           h.mode,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if h.clients != nil {
		resp["ws_clients"] = h.clients.ClientCount()
	}
	writeJSON(w, http.StatusOK, resp)
}
