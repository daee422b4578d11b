package handlers

import (
	"net/http"

	"github.com/edipo-dados/quant-stock-rank-sub001/pkg/database"
)

// HealthHandler reports process and database health.
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Get returns server health status.
// GET /health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.db.HealthCheck(r.Context())
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "degraded",
			"service":  "quant-stock-rank",
			"database": status,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"service":  "quant-stock-rank",
		"database": status,
	})
}
