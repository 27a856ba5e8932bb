package handlers

import (
	"net/http"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/services"
)

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user,omitempty"`
}

type AuthHandler struct {
	users  *services.UserService
	tokens *auth.Tokens
}

func NewAuthHandler(users *services.UserService, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Token exchanges form credentials (username, password) for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, r, apperr.E(apperr.BadRequest, "invalid_value", err))
		return
	}
	u, err := h.users.Authenticate(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.issue(w, r, u, http.StatusOK, false)
}

// Register opens a company with its first administrator and logs them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.issue(w, r, u, http.StatusCreated, true)
}

// Me returns the caller's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), caller(r).UserID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, u *models.User, status int, withUser bool) {
	token, err := h.tokens.Issue(auth.Identity{UserID: u.ID, CompanyID: u.GetCompanyID(), Role: u.Role})
	if err != nil {
		httpx.WriteError(w, r, apperr.Wrap("internal_error", err))
		return
	}
	resp := tokenResponse{AccessToken: token, TokenType: "bearer"}
	if withUser {
		resp.User = u
	}
	httpx.JSON(w, status, resp)
}
