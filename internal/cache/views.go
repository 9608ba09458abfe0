// Package cache memoizes read models per view and drops them when a mutation
// touches the entities that view displays.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// View tags. A key is either a tag or "<tag>:<suffix>".
const (
	TagDashboard     = "dashboard"
	TagLeads         = "leads"
	TagContacts      = "contacts"
	TagOrganizations = "organizations"
	TagActivities    = "activities"
	TagProducts      = "products"
	TagQuotes        = "quotes"
	TagMail          = "mail"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Views is a TTL cache of rendered read models. A nil *Views caches nothing.
type Views struct {
	mu      sync.RWMutex
	entries map[string]entry
	// gens counts invalidations per tag; a load that overlaps one is not stored.
	gens map[string]uint64
	ttl  time.Duration
	now  func() time.Time
}

// New returns a cache whose entries live at most ttl.
func New(ttl time.Duration) *Views {
	return &Views{entries: make(map[string]entry), gens: make(map[string]uint64), ttl: ttl, now: time.Now}
}

func tagOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// Get returns the cached value for key or calls load and stores its result.
// Errors are never cached.
func Get[T any](ctx context.Context, v *Views, key string, load func(context.Context) (T, error)) (T, error) {
	if v == nil {
		return load(ctx)
	}
	tag := tagOf(key)
	v.mu.RLock()
	e, ok := v.entries[key]
	gen := v.gens[tag]
	v.mu.RUnlock()
	if ok && v.now().Before(e.expiresAt) {
		if val, ok := e.value.(T); ok {
			return val, nil
		}
	}

	val, err := load(ctx)
	if err != nil {
		return val, err
	}
	v.mu.Lock()
	if v.gens[tag] == gen {
		v.entries[key] = entry{value: val, expiresAt: v.now().Add(v.ttl)}
	}
	v.mu.Unlock()
	return val, nil
}

// Invalidate drops every key belonging to the given tags.
func (v *Views) Invalidate(tags ...string) {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, tag := range tags {
		v.gens[tag]++
	}
	for key := range v.entries {
		for _, tag := range tags {
			if key == tag || strings.HasPrefix(key, tag+":") {
				delete(v.entries, key)
				break
			}
		}
	}
}
