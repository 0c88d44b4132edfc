// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for system-level monitoring.
// Exposes counters in a thread-safe map with dynamic registration.

package control

import (
	"sync"
	"time"
)

// Registry holds named monotonic counters.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]uint64
	updated  time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]uint64),
	}
}

// Add increases a counter by delta, creating it on first use.
func (r *Registry) Add(key string, delta uint64) {
	r.mu.Lock()
	r.counters[key] += delta
	r.updated = time.Now()
	r.mu.Unlock()
}

// Inc increases a counter by one.
func (r *Registry) Inc(key string) {
	r.Add(key, 1)
}

// Get returns a single counter value.
func (r *Registry) Get(key string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[key]
}

// Snapshot returns a copy of all counters.
func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]uint64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}
	return out
}

// UpdatedAt reports when any counter last changed.
func (r *Registry) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updated
}
