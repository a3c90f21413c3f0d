// Package registry is the process-wide directory from namespace to panel
// manager. It parses compound ids and lazily creates managers on first
// reference with a single authoritative insert path.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/arraypress/flyouts/core/manager"
)

// Factory constructs the manager for a namespace on first reference.
type Factory func(namespace string) *manager.Manager

// Registry maps namespaces to managers. Lookups on malformed or unknown
// input never fail loudly; they return the zero result and leave the
// not-found decision to the caller.
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*manager.Manager
	factory  Factory
}

// New creates a registry. The factory is used by Resolve when asked to
// create missing namespaces; a nil factory disables lazy creation.
func New(factory Factory) *Registry {
	return &Registry{
		managers: make(map[string]*manager.Manager),
		factory:  factory,
	}
}

// ParseID splits a compound id "namespace_localId" on the FIRST underscore.
// The local id may itself contain underscores; only the first one is the
// separator. Ids with no underscore, or with a leading underscore, are
// malformed.
func ParseID(id string) (namespace, local string, ok bool) {
	i := strings.Index(id, "_")
	if i <= 0 {
		return "", "", false
	}
	return id[:i], id[i+1:], true
}

// JoinID builds a compound id.
func JoinID(namespace, local string) string {
	return namespace + "_" + local
}

// Register adds a manager for a namespace, replacing any existing one.
func (r *Registry) Register(namespace string, m *manager.Manager) {
	if namespace == "" || m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[namespace] = m
}

// Get returns the manager for a namespace.
func (r *Registry) Get(namespace string) (*manager.Manager, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.managers[namespace]
	return m, ok
}

// Has reports whether a namespace is registered.
func (r *Registry) Has(namespace string) bool {
	_, ok := r.Get(namespace)
	return ok
}

// GetOrCreate returns the namespace's manager, constructing and
// registering one under the write lock when absent. Two concurrent first
// references observe the same instance.
func (r *Registry) GetOrCreate(namespace string) (*manager.Manager, bool) {
	if m, ok := r.Get(namespace); ok {
		return m, true
	}
	if r.factory == nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.managers[namespace]; ok {
		return m, true
	}
	m := r.factory(namespace)
	if m == nil {
		return nil, false
	}
	r.managers[namespace] = m
	return m, true
}

// Resolve parses a compound id and looks up its manager. With create set,
// an unknown namespace is constructed through the factory.
func (r *Registry) Resolve(id string, create bool) (*manager.Manager, string, bool) {
	namespace, local, ok := ParseID(id)
	if !ok {
		return nil, "", false
	}
	if create {
		m, ok := r.GetOrCreate(namespace)
		return m, local, ok
	}
	m, ok := r.Get(namespace)
	if !ok {
		return nil, "", false
	}
	return m, local, true
}

// Namespaces returns the registered namespaces, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.managers))
	for ns := range r.managers {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
