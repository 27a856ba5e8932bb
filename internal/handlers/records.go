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

// RecordHandler serves what is recorded on a site. Records addressed by their own id
// are authorized through their parent site.
type RecordHandler struct {
	base
	records *services.RecordService
	users   *services.UserService
	export  *services.ExportService
}

func NewRecordHandler(g *policy.AuthGate, sites *services.ChantierService, records *services.RecordService,
	users *services.UserService, export *services.ExportService) *RecordHandler {
	return &RecordHandler{base: base{gate: g, sites: sites}, records: records, users: users, export: export}
}

// listOn answers GET /chantiers/{id}/<resource>.
func listOn[T any](h *RecordHandler, resource string, list func(*http.Request, uint) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.site(r, "id", resource, gate.ActionList)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		items, err := list(r, c.ID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, items)
	}
}

// createOn answers POST /chantiers/{id}/<resource> with a decoded I payload.
func createOn[I, T any](h *RecordHandler, resource string, create func(*http.Request, uint, I) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.site(r, "id", resource, gate.ActionCreate)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		var in I
		if err := httpx.Decode(r, &in); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		out, err := create(r, c.ID, in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, out)
	}
}

// child loads a record by {id} and authorizes action through its site.
func child[T any](h *RecordHandler, r *http.Request, resource string, action gate.Action,
	load func(*http.Request, uint) (*T, error), siteOf func(*T) uint) (*T, *models.Chantier, error) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return nil, nil, err
	}
	v, err := load(r, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := h.siteByID(r.Context(), siteOf(v), resource, action)
	if err != nil {
		return nil, nil, err
	}
	return v, c, nil
}

func (h *RecordHandler) Rapports() http.HandlerFunc {
	return listOn(h, policy.ResRapport, func(r *http.Request, id uint) ([]models.Rapport, error) {
		return h.records.Rapports(r.Context(), id)
	})
}

func (h *RecordHandler) CreateRapport() http.HandlerFunc {
	return createOn(h, policy.ResRapport, func(r *http.Request, id uint, in services.RapportInput) (*models.Rapport, error) {
		return h.records.CreateRapport(r.Context(), id, in)
	})
}

func (h *RecordHandler) loadRapport(r *http.Request, id uint) (*models.Rapport, error) {
	return h.records.Rapport(r.Context(), id)
}

func rapportSite(v *models.Rapport) uint { return v.ChantierID }

func (h *RecordHandler) UpdateRapport(w http.ResponseWriter, r *http.Request) {
	rp, _, err := child(h, r, policy.ResRapport, gate.ActionUpdate, h.loadRapport, rapportSite)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.RapportInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.records.UpdateRapport(r.Context(), rp, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rp)
}

func (h *RecordHandler) DeleteRapport(w http.ResponseWriter, r *http.Request) {
	rp, _, err := child(h, r, policy.ResRapport, gate.ActionDelete, h.loadRapport, rapportSite)
	if err == nil {
		err = h.records.DeleteRapport(r.Context(), rp.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordHandler) Inspections() http.HandlerFunc {
	return listOn(h, policy.ResInspection, func(r *http.Request, id uint) ([]models.Inspection, error) {
		return h.records.Inspections(r.Context(), id)
	})
}

func (h *RecordHandler) CreateInspection() http.HandlerFunc {
	return createOn(h, policy.ResInspection, func(r *http.Request, id uint, in services.InspectionInput) (*models.Inspection, error) {
		author := ""
		if u, err := h.users.Get(r.Context(), caller(r).UserID); err == nil {
			author = u.FullName
		}
		return h.records.CreateInspection(r.Context(), id, author, in)
	})
}

func (h *RecordHandler) DeleteInspection(w http.ResponseWriter, r *http.Request) {
	load := func(r *http.Request, id uint) (*models.Inspection, error) { return h.records.Inspection(r.Context(), id) }
	siteOf := func(v *models.Inspection) uint { return v.ChantierID }
	i, _, err := child(h, r, policy.ResInspection, gate.ActionDelete, load, siteOf)
	if err == nil {
		err = h.records.DeleteInspection(r.Context(), i.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordHandler) Documents() http.HandlerFunc {
	return listOn(h, policy.ResDocument, func(r *http.Request, id uint) ([]models.ChantierDocument, error) {
		return h.records.Documents(r.Context(), id)
	})
}

func (h *RecordHandler) CreateDocument() http.HandlerFunc {
	return createOn(h, policy.ResDocument, func(r *http.Request, id uint, in services.DocumentInput) (*models.ChantierDocument, error) {
		return h.records.CreateDocument(r.Context(), id, in)
	})
}

func (h *RecordHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	load := func(r *http.Request, id uint) (*models.ChantierDocument, error) { return h.records.Document(r.Context(), id) }
	siteOf := func(v *models.ChantierDocument) uint { return v.ChantierID }
	d, _, err := child(h, r, policy.ResDocument, gate.ActionDelete, load, siteOf)
	if err == nil {
		err = h.records.DeleteDocument(r.Context(), d.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecordHandler) PIC(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResPIC, gate.ActionView)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.records.PIC(r.Context(), c.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *RecordHandler) SavePIC(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResPIC, gate.ActionUpdate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.PICInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.records.SavePIC(r.Context(), c.ID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *RecordHandler) PermisFeux() http.HandlerFunc {
	return listOn(h, policy.ResPermisFeu, func(r *http.Request, id uint) ([]models.PermisFeu, error) {
		return h.records.PermisFeux(r.Context(), id)
	})
}

func (h *RecordHandler) CreatePermisFeu() http.HandlerFunc {
	return createOn(h, policy.ResPermisFeu, func(r *http.Request, id uint, in services.PermisFeuInput) (*models.PermisFeu, error) {
		return h.records.CreatePermisFeu(r.Context(), id, in)
	})
}

func (h *RecordHandler) PermisFeuPDF(w http.ResponseWriter, r *http.Request) {
	load := func(r *http.Request, id uint) (*models.PermisFeu, error) { return h.records.PermisFeu(r.Context(), id) }
	siteOf := func(v *models.PermisFeu) uint { return v.ChantierID }
	p, c, err := child(h, r, policy.ResPermisFeu, gate.ActionExport, load, siteOf)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	data, err := h.export.PermisFeuPDF(r.Context(), c, p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("permis-feu-%d.pdf", p.ID), data)
}

func (h *RecordHandler) PlansPrevention() http.HandlerFunc {
	return listOn(h, policy.ResPlanPrevention, func(r *http.Request, id uint) ([]models.PlanPrevention, error) {
		return h.records.PlansPrevention(r.Context(), id)
	})
}

func (h *RecordHandler) CreatePlanPrevention() http.HandlerFunc {
	return createOn(h, policy.ResPlanPrevention, func(r *http.Request, id uint, in services.PlanPreventionInput) (*models.PlanPrevention, error) {
		return h.records.CreatePlanPrevention(r.Context(), id, in)
	})
}

func (h *RecordHandler) PlanPreventionPDF(w http.ResponseWriter, r *http.Request) {
	load := func(r *http.Request, id uint) (*models.PlanPrevention, error) { return h.records.PlanPrevention(r.Context(), id) }
	siteOf := func(v *models.PlanPrevention) uint { return v.ChantierID }
	p, c, err := child(h, r, policy.ResPlanPrevention, gate.ActionExport, load, siteOf)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	data, err := h.export.PlanPreventionPDF(r.Context(), c, p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("plan-prevention-%d.pdf", p.ID), data)
}

func (h *RecordHandler) PPSPSList() http.HandlerFunc {
	return listOn(h, policy.ResPPSPS, func(r *http.Request, id uint) ([]models.PPSPS, error) {
		return h.records.PPSPSList(r.Context(), id)
	})
}

func (h *RecordHandler) CreatePPSPS() http.HandlerFunc {
	return createOn(h, policy.ResPPSPS, func(r *http.Request, id uint, in services.PPSPSInput) (*models.PPSPS, error) {
		return h.records.CreatePPSPS(r.Context(), id, in)
	})
}

func (h *RecordHandler) PPSPSPDF(w http.ResponseWriter, r *http.Request) {
	load := func(r *http.Request, id uint) (*models.PPSPS, error) { return h.records.PPSPS(r.Context(), id) }
	siteOf := func(v *models.PPSPS) uint { return v.ChantierID }
	p, c, err := child(h, r, policy.ResPPSPS, gate.ActionExport, load, siteOf)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	data, err := h.export.PPSPSPDF(r.Context(), c, p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writePDF(w, fmt.Sprintf("ppsps-%d.pdf", p.ID), data)
}
