package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

const maxUploadBytes = 6 << 20

type MaterielHandler struct {
	gate      *policy.AuthGate
	materiels *services.MaterielService
}

func NewMaterielHandler(g *policy.AuthGate, materiels *services.MaterielService) *MaterielHandler {
	return &MaterielHandler{gate: g, materiels: materiels}
}

// List returns the company's equipment with its compliance status. ?chantier_id=N
// restricts it to one site.
func (h *MaterielHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionList, policy.ResMateriel, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var site *uint
	if raw := r.URL.Query().Get("chantier_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httpx.WriteError(w, r, apperr.E(apperr.BadRequest, "invalid_id", err))
			return
		}
		id := uint(n)
		site = &id
	}
	items, err := h.materiels.List(r.Context(), caller(r).CompanyID, site)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *MaterielHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResMateriel, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.MaterielInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	m, err := h.materiels.Create(r.Context(), caller(r).CompanyID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.materiels.View(m))
}

func (h *MaterielHandler) load(r *http.Request, action gate.Action) (*models.Materiel, error) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	m, err := h.materiels.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Authorize(r.Context(), action, policy.ResMateriel, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (h *MaterielHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.load(r, gate.ActionView)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.materiels.View(m))
}

func (h *MaterielHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, err := h.load(r, gate.ActionUpdate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.MaterielInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.materiels.Update(r.Context(), m, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.materiels.View(m))
}

func (h *MaterielHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, err := h.load(r, gate.ActionDelete)
	if err == nil {
		err = h.materiels.Delete(r.Context(), m.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	ChantierID *uint `json:"chantier_id"`
}

// Transfer moves the equipment to another site, or to the depot with a null chantier_id.
func (h *MaterielHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	m, err := h.load(r, gate.ActionUpdate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in transferRequest
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.materiels.Transfer(r.Context(), m, in.ChantierID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.materiels.View(m))
}

// Import reads a multipart "file" field holding a CSV inventory.
func (h *MaterielHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResMateriel, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		code := "csv_required"
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			code = "file_too_large"
		}
		httpx.WriteError(w, r, apperr.E(apperr.BadRequest, code, err))
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		httpx.WriteError(w, r, apperr.E(apperr.BadRequest, "csv_required", nil))
		return
	}
	res, err := h.materiels.Import(r.Context(), caller(r).CompanyID, file)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
