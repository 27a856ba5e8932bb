package handlers

import (
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

type TaskHandler struct {
	base
	tasks *services.TaskService
}

func NewTaskHandler(g *policy.AuthGate, sites *services.ChantierService, tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{base: base{gate: g, sites: sites}, tasks: tasks}
}

// Company lists the open and done tasks of every site of the caller's company.
func (h *TaskHandler) Company(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionList, policy.ResTask, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	tasks, err := h.tasks.ForCompany(r.Context(), caller(r).CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResTask, gate.ActionList)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	tasks, err := h.tasks.ForSite(r.Context(), c.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := h.site(r, "id", policy.ResTask, gate.ActionCreate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.TaskInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	t, err := h.tasks.Create(r.Context(), c.ID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) task(r *http.Request, action gate.Action) (*models.Task, error) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if _, err := h.siteByID(r.Context(), t.ChantierID, policy.ResTask, action); err != nil {
		return nil, err
	}
	return t, nil
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, err := h.task(r, gate.ActionUpdate)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.TaskInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.tasks.Update(r.Context(), t, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.task(r, gate.ActionDelete)
	if err == nil {
		err = h.tasks.Delete(r.Context(), t.ID)
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
