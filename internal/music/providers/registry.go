package providers

import (
	"sort"
	"sync"

	"musa/internal/logging"
)

// Registration is a snapshot of one provider's registry record.
type Registration struct {
	Name     string
	Enabled  bool
	Priority int // lower = tried first
}

type entry struct {
	provider Provider
	enabled  bool
	priority int
}

// Registry holds the configured provider set, sorted ascending by priority.
// All operations are pure in-memory mutations; no I/O happens here.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider with its initial enabled flag and priority.
// A provider registered under an already-known name replaces the old record.
func (r *Registry) Register(p Provider, enabled bool, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.provider.Name() == p.Name() {
			e.provider = p
			e.enabled = enabled
			e.priority = priority
			r.sortLocked()
			return
		}
	}

	r.entries = append(r.entries, &entry{provider: p, enabled: enabled, priority: priority})
	r.sortLocked()
	logging.Event("service_registered", "service", p.Name(), "enabled", enabled, "priority", priority)
}

// Enable marks a provider enabled. Idempotent; false if the name is unknown.
func (r *Registry) Enable(name string) bool {
	return r.setEnabled(name, true)
}

// Disable marks a provider disabled. Idempotent; false if the name is
// unknown. Descriptors the provider already produced stay valid in queues,
// but resolving them will fail with "service not found".
func (r *Registry) Disable(name string) bool {
	return r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.provider.Name() == name {
			e.enabled = enabled
			if enabled {
				logging.Event("service_enabled", "service", name)
			} else {
				logging.Event("service_disabled", "service", name)
			}
			return true
		}
	}
	return false
}

// SetPriority changes a provider's priority and re-sorts the registry.
// Returns false if the name is unknown.
func (r *Registry) SetPriority(name string, priority int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.provider.Name() == name {
			old := e.priority
			e.priority = priority
			r.sortLocked()
			logging.Event("service_priority_changed", "service", name, "old", old, "new", priority)
			return true
		}
	}
	return false
}

// Enabled returns all enabled providers in priority order.
func (r *Registry) Enabled() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.entries))
	for _, e := range r.entries {
		if e.enabled {
			out = append(out, e.provider)
		}
	}
	return out
}

// GetEnabled returns the enabled provider with the given name.
func (r *Registry) GetEnabled(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.enabled && e.provider.Name() == name {
			return e.provider, true
		}
	}
	return nil, false
}

// Get returns the provider with the given name, enabled or not.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.provider.Name() == name {
			return e.provider, true
		}
	}
	return nil, false
}

// Snapshot returns every registration record in priority order.
func (r *Registry) Snapshot() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Registration{
			Name:     e.provider.Name(),
			Enabled:  e.enabled,
			Priority: e.priority,
		})
	}
	return out
}

// sortLocked keeps entries ascending by priority, name as tiebreaker for a
// stable order. Caller must hold r.mu.
func (r *Registry) sortLocked() {
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority < r.entries[j].priority
		}
		return r.entries[i].provider.Name() < r.entries[j].provider.Name()
	})
}
