// Package component maps field types to renderer descriptors and implements
// the polymorphic value extraction used to build panels from host records.
package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arraypress/flyouts/domain/panel"
)

// Descriptor describes one component type: which renderer draws it, the
// shape of the data it needs, and the script asset it depends on.
type Descriptor struct {
	// Type is the field type discriminator.
	Type string

	// Renderer names the render routine the host's rendering layer uses.
	// Required.
	Renderer string

	// Fields is the data shape: one name for simple components, an ordered
	// list for composites. Empty means the default single {value} shape.
	Fields []string

	// Asset names the script bundle the component needs, or "" for none.
	Asset string

	// Category groups components for documentation and palettes.
	Category string
}

// Registry maps field types to descriptors. Reads never fail; lookups for
// unknown types degrade to the default single-value shape.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Descriptor
}

// NewRegistry creates a registry pre-populated with the built-in
// component types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Descriptor, len(builtins))}
	for _, d := range builtins {
		r.types[d.Type] = d
	}
	return r
}

// Register adds or replaces a descriptor. A descriptor without a renderer
// reference is a configuration defect and is rejected.
func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" {
		return fmt.Errorf("component type is required")
	}
	if d.Renderer == "" {
		return fmt.Errorf("component %q: renderer reference is required", d.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[d.Type] = d
	return nil
}

// Unregister removes a type. Removing an unknown type is a no-op.
func (r *Registry) Unregister(typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.types, typ)
}

// Get returns the descriptor for a type.
func (r *Registry) Get(typ string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typ]
	return d, ok
}

// ResolveData resolves the data a component of the given type needs from a
// host record. Single-name shapes wrap one resolved value; composite shapes
// either accept a pre-built mapping containing any required name, or
// assemble one by resolving each name individually (the pseudo-field
// "value" resolves under the field's own key).
func (r *Registry) ResolveData(typ, key string, record any) map[string]any {
	d, ok := r.Get(typ)
	if !ok || len(d.Fields) == 0 {
		return map[string]any{"value": ResolveValue(key, record)}
	}

	if len(d.Fields) == 1 {
		return map[string]any{d.Fields[0]: ResolveValue(key, record)}
	}

	resolved := ResolveValue(key, record)
	if m := asStringMap(resolved); m != nil {
		for _, name := range d.Fields {
			if _, present := m[name]; present {
				return m
			}
		}
	}

	out := make(map[string]any, len(d.Fields))
	for _, name := range d.Fields {
		if name == "value" {
			out[name] = ResolveValue(key, record)
			continue
		}
		out[name] = ResolveValue(name, record)
	}
	return out
}

// GetAsset returns the script asset a field needs, or "". A header only
// needs its asset when the field is editable.
func (r *Registry) GetAsset(typ string, f *panel.Field) string {
	d, ok := r.Get(typ)
	if !ok {
		return ""
	}
	if typ == panel.TypeHeader && (f == nil || !f.Editable) {
		return ""
	}
	return d.Asset
}

// GetAllAssets returns the deduplicated, sorted union of all non-empty
// asset names.
func (r *Registry) GetAllAssets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, d := range r.types {
		if d.Asset != "" {
			seen[d.Asset] = struct{}{}
		}
	}
	assets := make([]string, 0, len(seen))
	for a := range seen {
		assets = append(assets, a)
	}
	sort.Strings(assets)
	return assets
}
