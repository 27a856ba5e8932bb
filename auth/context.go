// Package auth issues and verifies bearer tokens, hashes passwords and carries the
// authenticated identity through request contexts.
package auth

import "context"

type ctxKey struct{}

// Identity is the authenticated caller as stated by a verified token.
type Identity struct {
	UserID    uint
	CompanyID uint
	Role      string
}

// IsZero reports whether no user is attached.
func (i Identity) IsZero() bool { return i.UserID == 0 }

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext extracts the caller identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}
