package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/db"
	"github.com/diewo77/go-chantiers/internal/logging"
)

// Health answers /health with a constant body and /healthz with a database ping.
type Health struct {
	db *gorm.DB
}

func NewHealth(conn *gorm.DB) *Health { return &Health{db: conn} }

func (h *Health) Live(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, h.db); err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("health check: database unreachable")
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
