package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

type ChantierHandler struct {
	base
	materiels *services.MaterielService
	companies *services.CompanyService
	export    *services.ExportService
}

func NewChantierHandler(g *policy.AuthGate, sites *services.ChantierService, materiels *services.MaterielService,
	companies *services.CompanyService, export *services.ExportService) *ChantierHandler {
	return &ChantierHandler{base: base{gate: g, sites: sites}, materiels: materiels, companies: companies, export: export}
}

func (h *ChantierHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionList, policy.ResChantier, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sites, err := h.sites.List(r.Context(), caller(r).CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sites)
}

func (h *ChantierHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResChantier, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.ChantierInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c, err := h.sites.Create(r.Context(), caller(r).CompanyID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ChantierHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResChantier, gate.ActionView)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ChantierHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResChantier, gate.ActionUpdate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.ChantierInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.sites.Update(r.Context(), c, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ChantierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResChantier, gate.ActionDelete)
	if err == nil {
		err = h.sites.Delete(r.Context(), c.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Materiels lists the equipment currently on the site.
func (h *ChantierHandler) Materiels(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResMateriel, gate.ActionList)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	items, err := h.materiels.List(r.Context(), c.CompanyID, &c.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

// SendEmail mails the site report PDF. A provider failure is reported as sent=false.
func (h *ChantierHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResChantier, gate.ActionExport)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.SendInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	company, err := h.companies.Get(r.Context(), c.CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sent, err := h.export.SendChantierReport(r.Context(), company, c, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

func (h *ChantierHandler) PDF(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResChantier, gate.ActionExport)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	data, err := h.export.ChantierPDF(r.Context(), c)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("chantier-%d.pdf", c.ID), data)
}

func (h *ChantierHandler) PICPDF(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResPIC, gate.ActionExport)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	data, err := h.export.PICPDF(r.Context(), c)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("pic-%d.pdf", c.ID), data)
}
