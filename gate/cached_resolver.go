package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver wraps a ProfileResolver with TTL-based caching so the database is
// not queried on every authorization check. Expired entries are swept on write at
// most once per ttl, so the map stays bounded by the subjects seen within a window.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	cache     map[U]cacheEntry
	lastSweep time.Time
}

type cacheEntry struct {
	profile   Profile
	expiresAt time.Time
}

// NewCachedResolver wraps inner; entries live for ttl.
func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[U]cacheEntry),
	}
}

// WithClock replaces the time source. Used by tests.
func (r *CachedResolver[U]) WithClock(now func() time.Time) *CachedResolver[U] {
	r.now = now
	return r
}

// Resolve returns the cached profile or asks the inner resolver.
// Errors are not cached.
func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Profile, error) {
	r.mu.RLock()
	entry, ok := r.cache[user]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.profile, nil
	}

	profile, err := r.inner.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	now := r.now()
	r.mu.Lock()
	if now.Sub(r.lastSweep) >= r.ttl {
		for u, e := range r.cache {
			if !now.Before(e.expiresAt) {
				delete(r.cache, u)
			}
		}
		r.lastSweep = now
	}
	r.cache[user] = cacheEntry{profile: profile, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()
	return profile, nil
}

// Len returns the number of cached subjects, expired ones included until swept.
func (r *CachedResolver[U]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// Invalidate drops user from the cache. Call it when a role or active flag changes.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.cache, user)
	r.mu.Unlock()
}

// InvalidateWhere drops every cached subject matching fn.
func (r *CachedResolver[U]) InvalidateWhere(fn func(U) bool) {
	r.mu.Lock()
	for u := range r.cache {
		if fn(u) {
			delete(r.cache, u)
		}
	}
	r.mu.Unlock()
}

// InvalidateAll clears the cache.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[U]cacheEntry)
	r.mu.Unlock()
}
