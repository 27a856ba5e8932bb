package gate

import (
	"context"
	"sort"
)

// Profile is a named set of permissions, usually a role.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver finds the profile a subject currently holds.
// A nil profile with a nil error means "no access".
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// ResolverFunc adapts a function to ProfileResolver.
type ResolverFunc[U any] func(ctx context.Context, user U) (Profile, error)

func (f ResolverFunc[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	return f(ctx, user)
}

// RoleProfile is an in-memory profile.
type RoleProfile struct {
	name        string
	permissions map[Permission]struct{}
}

// NewRoleProfile creates a profile granting perms.
func NewRoleProfile(name string, perms ...Permission) *RoleProfile {
	p := &RoleProfile{name: name, permissions: make(map[Permission]struct{}, len(perms))}
	for _, perm := range perms {
		p.permissions[perm] = struct{}{}
	}
	return p
}

func (p *RoleProfile) Name() string { return p.name }

// Permissions returns the granted permissions, sorted.
func (p *RoleProfile) Permissions() []Permission {
	out := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *RoleProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}
