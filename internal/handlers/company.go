package handlers

import (
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

type CompanyHandler struct {
	gate      *policy.AuthGate
	companies *services.CompanyService
}

func NewCompanyHandler(g *policy.AuthGate, companies *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{gate: g, companies: companies}
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.companies.Get(r.Context(), caller(r).CompanyID)
	if err == nil {
		err = h.gate.Authorize(r.Context(), gate.ActionView, policy.ResCompany, c)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := h.companies.Get(r.Context(), caller(r).CompanyID)
	if err == nil {
		err = h.gate.Authorize(r.Context(), gate.ActionUpdate, policy.ResCompany, c)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.CompanyInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.companies.Update(r.Context(), c, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CompanyHandler) Documents(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionList, policy.ResCompanyDocument, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	docs, err := h.companies.Documents(r.Context(), caller(r).CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

func (h *CompanyHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResCompanyDocument, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.CompanyDocumentInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.companies.CreateDocument(r.Context(), caller(r).CompanyID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, d)
}

func (h *CompanyHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	d, err := h.companies.Document(r.Context(), id)
	if err == nil {
		err = h.gate.Authorize(r.Context(), gate.ActionDelete, policy.ResCompanyDocument, d)
	}
	if err == nil {
		err = h.companies.DeleteDocument(r.Context(), d.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
