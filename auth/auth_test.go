package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{UserID: 4, CompanyID: 2, Role: "admin"}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tokens := NewTokens("secret", 0).WithClock(func() time.Time { return now })
	assert.Equal(t, DefaultTTL, tokens.TTL())

	raw, err := tokens.Issue(alice)
	require.NoError(t, err)

	claims := tokens.Verify(raw)
	require.NotNil(t, claims)
	assert.Equal(t, alice, claims.Identity())
	assert.Equal(t, "4", claims.Subject)
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	tokens := NewTokens("secret", time.Hour).WithClock(func() time.Time { return now })
	raw, err := tokens.Issue(alice)
	require.NoError(t, err)

	other := NewTokens("other-secret", time.Hour).WithClock(func() time.Time { return now })
	later := NewTokens("secret", time.Hour).WithClock(func() time.Time { return now.Add(2 * time.Hour) })

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "4", "exp": now.Add(time.Hour).Unix()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.Nil(t, tokens.Verify(""), "empty")
	assert.Nil(t, tokens.Verify("not.a.jwt"), "garbage")
	assert.Nil(t, other.Verify(raw), "wrong key")
	assert.Nil(t, later.Verify(raw), "expired")
	assert.Nil(t, tokens.Verify(noneToken), "alg none")
}

func TestIssueRequiresUser(t *testing.T) {
	_, err := NewTokens("s", time.Hour).Issue(Identity{})
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("plaintext-legacy", "plaintext-legacy"))
}

func TestMiddlewareAndRequireAuth(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(alice)
	require.NoError(t, err)

	var seen Identity
	protected := tokens.Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/chantiers", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, alice, seen)

	w = httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chantiers", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)

	// query tokens are ignored by the plain middleware
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chantiers?token="+raw, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQueryTokenMiddleware(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	raw, err := tokens.Issue(alice)
	require.NoError(t, err)

	h := tokens.QueryTokenMiddleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chantiers/1/pdf?token="+raw, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chantiers/1/pdf?token=bogus", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
