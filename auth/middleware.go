package auth

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-chantiers/httpx"
)

// Middleware attaches the identity of a valid bearer token to the request context.
// Requests without a valid token pass through anonymous; RequireAuth decides.
func (t *Tokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c := t.Verify(bearer(r)); c != nil {
			r = r.WithContext(WithIdentity(r.Context(), c.Identity()))
		}
		next.ServeHTTP(w, r)
	})
}

// QueryTokenMiddleware also accepts ?token= so documents can be opened by a plain link.
// The header wins when both are present.
func (t *Tokens) QueryTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		if c := t.Verify(raw); c != nil {
			r = r.WithContext(WithIdentity(r.Context(), c.Identity()))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 JSON when no identity is attached.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httpx.JSONError(w, r, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
