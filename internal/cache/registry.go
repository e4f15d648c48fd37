// Package cache tracks when each dashboard section was last refreshed.
//
// The registry stores refresh timestamps only, never payloads. Freshness is
// evaluated lazily on read; expired entries stay in place until they are
// touched again or explicitly invalidated.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/aristath/bankdash/internal/metrics"
)

// DefaultTTL is how long a section stays fresh after a successful fetch.
const DefaultTTL = 60 * time.Second

// Section cache keys.
const (
	KeyDashboard        = "dashboard"
	KeyFraud            = "fraud"
	KeyStats            = "stats"
	KeyTransactionTypes = "transaction_types"
	KeyTopCustomers     = "top_customers"
)

// Entry is a single key and its last refresh time.
type Entry struct {
	Key           string    `json:"key"`
	LastRefreshed time.Time `json:"last_refreshed"`
}

// Registry maps cache keys to their last refresh timestamp.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry. A non-positive ttl falls back to DefaultTTL.
func NewRegistry(ttl time.Duration, opts ...Option) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TTL returns the freshness window.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// IsFresh reports whether key was refreshed less than TTL ago.
func (r *Registry) IsFresh(key string) bool {
	r.mu.RLock()
	refreshed, ok := r.entries[key]
	r.mu.RUnlock()

	fresh := ok && r.now().Sub(refreshed) < r.ttl
	metrics.ObserveCacheLookup(key, fresh)
	return fresh
}

// Touch records now as the refresh time for key, creating the entry if needed.
func (r *Registry) Touch(key string) {
	r.mu.Lock()
	r.entries[key] = r.now()
	r.mu.Unlock()
}

// Invalidate removes the given keys. With no keys it clears every entry.
func (r *Registry) Invalidate(keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(keys) == 0 {
		r.entries = make(map[string]time.Time)
		return
	}
	for _, key := range keys {
		delete(r.entries, key)
	}
}

// Entries returns all entries sorted by key, including stale ones.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for key, refreshed := range r.entries {
		out = append(out, Entry{Key: key, LastRefreshed: refreshed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
