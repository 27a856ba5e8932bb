package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

// DUERPHandler serves the company's yearly risk registers, addressed by year.
type DUERPHandler struct {
	gate      *policy.AuthGate
	duerps    *services.DUERPService
	companies *services.CompanyService
	export    *services.ExportService
}

func NewDUERPHandler(g *policy.AuthGate, duerps *services.DUERPService, companies *services.CompanyService,
	export *services.ExportService) *DUERPHandler {
	return &DUERPHandler{gate: g, duerps: duerps, companies: companies, export: export}
}

func (h *DUERPHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionList, policy.ResDUERP, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	years, err := h.duerps.Years(r.Context(), caller(r).CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, years)
}

func (h *DUERPHandler) load(r *http.Request, action gate.Action) (*models.DUERP, error) {
	annee, err := pathInt(r, "annee")
	if err != nil {
		return nil, err
	}
	d, err := h.duerps.Get(r.Context(), caller(r).CompanyID, annee)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Authorize(r.Context(), action, policy.ResDUERP, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (h *DUERPHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.load(r, gate.ActionView)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Save creates or replaces the register of the year in the body.
func (h *DUERPHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResDUERP, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.DUERPInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.duerps.Save(r.Context(), caller(r).CompanyID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *DUERPHandler) PDF(w http.ResponseWriter, r *http.Request) {
	d, err := h.load(r, gate.ActionExport)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	company, err := h.companies.Get(r.Context(), d.CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	data, err := h.export.DUERPPDF(r.Context(), company, d)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("duerp-%d.pdf", d.Annee), data)
}
