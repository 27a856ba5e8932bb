// Package gate is a small role and policy authorization layer.
//
// A Gate first asks a ProfileResolver which profile (role) a subject holds and
// checks that the profile grants "resource:action". When a concrete target is
// supplied and a Policy is registered for the resource, the policy has the final
// word (typically a tenant ownership check).
//
// The subject type is generic so the same gate can authorize plain user IDs in
// tests and full token identities in the HTTP layer.
package gate

import "context"

// Gate combines profile permissions with per-resource policies.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate backed by resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register sets the policy consulted for targets of resource. It replaces any previous one.
func (g *Gate[U]) Register(resource string, p Policy[U]) {
	g.policies[resource] = p
}

// Authorize returns nil when user may perform action on target.
//
// A zero user yields ErrUnauthenticated. A missing profile, a missing permission or a
// policy refusal yields ErrForbidden. target may be nil for list and create checks,
// in which case only the profile is consulted.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resource string, target any) error {
	var zero U
	if user == zero {
		return ErrUnauthenticated
	}
	if !g.Allows(ctx, user, action, resource) {
		return ErrForbidden
	}
	if target == nil {
		return nil
	}
	if p, ok := g.policies[resource]; ok && !p.Can(ctx, user, action, target) {
		return ErrForbidden
	}
	return nil
}

// Allows checks only the profile permission, without any policy.
func (g *Gate[U]) Allows(ctx context.Context, user U, action Action, resource string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resource, action))
}
