package policy

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
)

// AuthGate is the gate bound to request identities.
type AuthGate struct {
	gate     *gate.Gate[auth.Identity]
	Resolver *gate.CachedResolver[auth.Identity]
}

// NewAuthGate builds a gate over the users table with profiles cached for ttl, and
// registers the ownership policy for every resource.
func NewAuthGate(db *gorm.DB, ttl time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[auth.Identity](NewDBResolver(db), ttl)
	g := gate.New[auth.Identity](cached)
	owner := NewOwnershipPolicy()
	for _, r := range Resources {
		g.Register(r, owner)
	}
	return &AuthGate{gate: g, Resolver: cached}
}

// Authorize checks the caller of ctx against action on target. The gate errors map
// to 401 and 403 through apperr.KindOf.
func (a *AuthGate) Authorize(ctx context.Context, action gate.Action, resource string, target any) error {
	id, _ := auth.IdentityFromContext(ctx)
	return a.gate.Authorize(ctx, id, action, resource, target)
}

// Can reports whether the caller holds the resource:action permission.
func (a *AuthGate) Can(ctx context.Context, action gate.Action, resource string) bool {
	id, _ := auth.IdentityFromContext(ctx)
	return a.gate.Allows(ctx, id, action, resource)
}

// Forget drops the cached profile of a user after a role or status change.
func (a *AuthGate) Forget(userID uint) {
	a.Resolver.InvalidateWhere(func(id auth.Identity) bool { return id.UserID == userID })
}

// RequirePermission rejects callers whose profile lacks resource:action.
func (a *AuthGate) RequirePermission(resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := a.Authorize(r.Context(), action, resource, nil); err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only profiles holding every permission.
func (a *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return a.RequirePermission(gate.Wildcard, gate.Action(gate.Wildcard))
}
