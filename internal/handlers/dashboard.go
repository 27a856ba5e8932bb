package handlers

import (
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

type DashboardHandler struct {
	gate      *policy.AuthGate
	dashboard *services.DashboardService
}

func NewDashboardHandler(g *policy.AuthGate, dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{gate: g, dashboard: dashboard}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionView, policy.ResDashboard, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	stats, err := h.dashboard.Stats(r.Context(), caller(r).CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
