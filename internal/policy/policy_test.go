package policy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/dbtest"
	"github.com/diewo77/go-chantiers/internal/models"
	"github.com/diewo77/go-chantiers/internal/policy"
)

func TestProfiles(t *testing.T) {
	cases := []struct {
		role     string
		resource string
		action   gate.Action
		want     bool
	}{
		{models.RoleAdmin, policy.ResUser, gate.ActionCreate, true},
		{models.RoleConducteur, policy.ResChantier, gate.ActionDelete, true},
		{models.RoleConducteur, policy.ResUser, gate.ActionCreate, false},
		{models.RoleConducteur, policy.ResCompany, gate.ActionUpdate, false},
		{models.RoleChefChantier, policy.ResRapport, gate.ActionCreate, true},
		{models.RoleChefChantier, policy.ResChantier, gate.ActionCreate, false},
		{models.RoleChefChantier, policy.ResMateriel, gate.ActionDelete, false},
		{models.RoleLecteur, policy.ResChantier, gate.ActionView, true},
		{models.RoleLecteur, policy.ResChantier, gate.ActionExport, true},
		{models.RoleLecteur, policy.ResRapport, gate.ActionCreate, false},
	}
	for _, tc := range cases {
		p := policy.ProfileFor(tc.role)
		require.NotNil(t, p, tc.role)
		assert.Equal(t, tc.want, p.HasPermission(gate.NewPermission(tc.resource, tc.action)),
			"%s %s:%s", tc.role, tc.resource, tc.action)
	}
	assert.Nil(t, policy.ProfileFor("superhero"))
}

func TestAuthGateOwnership(t *testing.T) {
	conn := dbtest.Open(t)
	a := dbtest.SeedTenant(t, conn, "Alpha", models.RoleConducteur)
	b := dbtest.SeedTenant(t, conn, "Beta", models.RoleConducteur)
	siteB := dbtest.SeedChantier(t, conn, b.Company.ID, "B1")
	siteA := dbtest.SeedChantier(t, conn, a.Company.ID, "A1")

	g := policy.NewAuthGate(conn, time.Minute)
	ctxA := auth.WithIdentity(context.Background(), a.Identity())

	assert.NoError(t, g.Authorize(ctxA, gate.ActionUpdate, policy.ResChantier, &siteA))
	err := g.Authorize(ctxA, gate.ActionView, policy.ResChantier, &siteB)
	assert.ErrorIs(t, err, gate.ErrForbidden)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	err = g.Authorize(context.Background(), gate.ActionView, policy.ResChantier, &siteA)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestAuthGateFollowsStoredUser(t *testing.T) {
	conn := dbtest.Open(t)
	tn := dbtest.SeedTenant(t, conn, "Gamma", models.RoleConducteur)
	g := policy.NewAuthGate(conn, time.Hour)
	ctx := auth.WithIdentity(context.Background(), tn.Identity())

	assert.True(t, g.Can(ctx, gate.ActionCreate, policy.ResChantier))

	require.NoError(t, conn.Model(&tn.User).Update("role", models.RoleLecteur).Error)
	assert.True(t, g.Can(ctx, gate.ActionCreate, policy.ResChantier), "cached profile still in use")
	g.Forget(tn.User.ID)
	assert.False(t, g.Can(ctx, gate.ActionCreate, policy.ResChantier))

	require.NoError(t, conn.Model(&tn.User).Updates(map[string]any{"role": models.RoleAdmin, "is_active": false}).Error)
	g.Forget(tn.User.ID)
	assert.False(t, g.Can(ctx, gate.ActionView, policy.ResChantier), "inactive users get nothing")
}

func TestRequirePermission(t *testing.T) {
	conn := dbtest.Open(t)
	admin := dbtest.SeedTenant(t, conn, "Delta", models.RoleAdmin)
	reader := dbtest.SeedTenant(t, conn, "Epsilon", models.RoleLecteur)
	g := policy.NewAuthGate(conn, time.Minute)

	h := g.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	serve := func(id *auth.Identity) int {
		req := httptest.NewRequest(http.MethodPost, "/users", nil)
		if id != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), *id))
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	adminID, readerID := admin.Identity(), reader.Identity()
	assert.Equal(t, http.StatusNoContent, serve(&adminID))
	assert.Equal(t, http.StatusForbidden, serve(&readerID))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}
