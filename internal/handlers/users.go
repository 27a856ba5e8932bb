package handlers

import (
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

type UserHandler struct {
	gate  *policy.AuthGate
	users *services.UserService
}

func NewUserHandler(g *policy.AuthGate, users *services.UserService) *UserHandler {
	return &UserHandler{gate: g, users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionList, policy.ResUser, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	users, err := h.users.List(r.Context(), caller(r).CompanyID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Authorize(r.Context(), gate.ActionCreate, policy.ResUser, nil); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.UserInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), caller(r).CompanyID, in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

// Update lets admins edit any colleague. Other users may only change their own
// name, e-mail and password.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	var in services.UserInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	self := u.ID == caller(r).UserID
	if err := h.gate.Authorize(r.Context(), gate.ActionUpdate, policy.ResUser, u); err != nil {
		// The self path still needs a live profile: a deactivated or moved account
		// resolves to none and holds no permission at all.
		if !self || !h.gate.Can(r.Context(), gate.ActionView, policy.ResUser) {
			httpx.WriteError(w, r, err)
			return
		}
		in.Role, in.IsActive = nil, nil
	}
	if err := h.users.Update(r.Context(), u, in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.gate.Forget(u.ID)
	httpx.JSON(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.gate.Authorize(r.Context(), gate.ActionDelete, policy.ResUser, u); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if u.ID == caller(r).UserID {
		httpx.WriteError(w, r, apperr.E(apperr.BadRequest, "cannot_delete_self", nil))
		return
	}
	if err := h.users.Delete(r.Context(), u.ID); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.gate.Forget(u.ID)
	w.WriteHeader(http.StatusNoContent)
}
