// Package registry implements the static method catalog: lookup by
// name, iteration in registration order, and the always-present
// "none" probe that never appears in an advertised continuation list.
package registry

import (
	"fmt"
	"sync"

	"github.com/sshauthd/sshauthd/internal/domain"
)

// NoneMethod is the name of the free probe clients use to learn the
// advertised method list. It is never returned by EnabledAdvertisable.
const NoneMethod = "none"

// Registry is a read-only catalog after startup; the method
// enabled-flags it wraps may still be mutable by configuration. Reads
// take a shared lock on the catalog itself; the enabled flags are read
// through each method without any registry locking.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	methods map[string]domain.Method
}

func New() *Registry {
	return &Registry{methods: make(map[string]domain.Method)}
}

// Register adds a method descriptor. Order of registration is the
// order Advertise and EnabledAdvertisable report back in.
func (r *Registry) Register(m domain.Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if name == "" {
		return fmt.Errorf("registry: method name cannot be empty")
	}
	if _, exists := r.methods[name]; exists {
		return fmt.Errorf("registry: method %q already registered", name)
	}

	r.methods[name] = m
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the descriptor for name, if any.
func (r *Registry) Lookup(name string) (domain.Method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[name]
	return m, ok
}

// Enabled reports whether name is both registered and currently
// enabled.
func (r *Registry) Enabled(name string) bool {
	m, ok := r.Lookup(name)
	return ok && m.Enabled()
}

// IterEnabled returns every currently-enabled method in registration
// order, "none" included.
func (r *Registry) IterEnabled() []domain.Method {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Method, 0, len(r.order))
	for _, name := range r.order {
		m := r.methods[name]
		if m.Enabled() {
			out = append(out, m)
		}
	}
	return out
}

// EnabledAdvertisable is IterEnabled with "none" excluded — the set
// policy.Advertise filters against method_allowed.
func (r *Registry) EnabledAdvertisable() []domain.Method {
	all := r.IterEnabled()
	out := make([]domain.Method, 0, len(all))
	for _, m := range all {
		if m.Name() == NoneMethod {
			continue
		}
		out = append(out, m)
	}
	return out
}
