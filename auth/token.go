package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the access token lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the token payload. Subject holds the user id.
type Claims struct {
	CompanyID uint   `json:"company_id,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts verified claims to an Identity. A malformed subject yields a zero identity.
func (c *Claims) Identity() Identity {
	uid, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return Identity{}
	}
	return Identity{UserID: uint(uid), CompanyID: c.CompanyID, Role: c.Role}
}

// Tokens signs and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds a signer. A non-positive ttl selects DefaultTTL.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now
	return t
}

// TTL returns the configured lifetime.
func (t *Tokens) TTL() time.Duration { return t.ttl }

// Issue signs a token for id.
func (t *Tokens) Issue(id Identity) (string, error) {
	if id.IsZero() {
		return "", errors.New("auth: cannot issue token without user")
	}
	now := t.now()
	claims := Claims{
		CompanyID: id.CompanyID,
		Role:      id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify returns the claims of a valid token, or nil for anything malformed,
// expired, or signed with another key or method.
func (t *Tokens) Verify(raw string) *Claims {
	if raw == "" {
		return nil
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil
	}
	if claims.Identity().IsZero() {
		return nil
	}
	return claims
}
