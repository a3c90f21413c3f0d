// Package hostfn is a name-to-callback registry. Panel manifests declare
// callbacks by name; the embedding application registers the functions
// here before the manifests are loaded.
package hostfn

import (
	"fmt"
	"sync"

	"github.com/arraypress/flyouts/domain/panel"
)

// Registry holds named host callbacks, one map per callback kind.
type Registry struct {
	mu       sync.RWMutex
	load     map[string]panel.LoadFunc
	save     map[string]panel.SaveFunc
	delete   map[string]panel.DeleteFunc
	validate map[string]panel.ValidateFunc
	search   map[string]panel.SearchFunc
	action   map[string]panel.ActionFunc
}

// New creates an empty callback registry.
func New() *Registry {
	return &Registry{
		load:     make(map[string]panel.LoadFunc),
		save:     make(map[string]panel.SaveFunc),
		delete:   make(map[string]panel.DeleteFunc),
		validate: make(map[string]panel.ValidateFunc),
		search:   make(map[string]panel.SearchFunc),
		action:   make(map[string]panel.ActionFunc),
	}
}

// RegisterLoad names a load callback. Registration replaces.
func (r *Registry) RegisterLoad(name string, fn panel.LoadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load[name] = fn
}

// RegisterSave names a save callback.
func (r *Registry) RegisterSave(name string, fn panel.SaveFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.save[name] = fn
}

// RegisterDelete names a delete callback.
func (r *Registry) RegisterDelete(name string, fn panel.DeleteFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delete[name] = fn
}

// RegisterValidate names a validate callback.
func (r *Registry) RegisterValidate(name string, fn panel.ValidateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validate[name] = fn
}

// RegisterSearch names a search callback.
func (r *Registry) RegisterSearch(name string, fn panel.SearchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.search[name] = fn
}

// RegisterAction names an action callback.
func (r *Registry) RegisterAction(name string, fn panel.ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.action[name] = fn
}

// Load resolves a named load callback.
func (r *Registry) Load(name string) (panel.LoadFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.load[name]
	if !ok {
		return nil, fmt.Errorf("load callback %q not registered", name)
	}
	return fn, nil
}

// Save resolves a named save callback.
func (r *Registry) Save(name string) (panel.SaveFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.save[name]
	if !ok {
		return nil, fmt.Errorf("save callback %q not registered", name)
	}
	return fn, nil
}

// Delete resolves a named delete callback.
func (r *Registry) Delete(name string) (panel.DeleteFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.delete[name]
	if !ok {
		return nil, fmt.Errorf("delete callback %q not registered", name)
	}
	return fn, nil
}

// Validate resolves a named validate callback.
func (r *Registry) Validate(name string) (panel.ValidateFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.validate[name]
	if !ok {
		return nil, fmt.Errorf("validate callback %q not registered", name)
	}
	return fn, nil
}

// Search resolves a named search callback.
func (r *Registry) Search(name string) (panel.SearchFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.search[name]
	if !ok {
		return nil, fmt.Errorf("search callback %q not registered", name)
	}
	return fn, nil
}

// Action resolves a named action callback.
func (r *Registry) Action(name string) (panel.ActionFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.action[name]
	if !ok {
		return nil, fmt.Errorf("action callback %q not registered", name)
	}
	return fn, nil
}
