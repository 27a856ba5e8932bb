// Package handlers exposes the JSON API. Every handler resolves the caller from the
// request context and checks tenant ownership through the policy gate before
// touching a record.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

// base is shared by the handlers that work through a parent site.
type base struct {
	gate  *policy.AuthGate
	sites *services.ChantierService
}

func caller(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

// site loads the site named by the {param} path value and authorizes action on
// resource against it. Missing sites are 404, foreign ones 403.
func (b base) site(r *http.Request, param, resource string, action gate.Action) (*models.Chantier, error) {
	id, err := httpx.PathID(r, param)
	if err != nil {
		return nil, err
	}
	return b.siteByID(r.Context(), id, resource, action)
}

func (b base) siteByID(ctx context.Context, id uint, resource string, action gate.Action) (*models.Chantier, error) {
	c, err := b.sites.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.gate.Authorize(ctx, action, resource, c); err != nil {
		return nil, err
	}
	return c, nil
}

func writePDF(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, apperr.E(apperr.BadRequest, "invalid_id", err)
	}
	return n, nil
}
