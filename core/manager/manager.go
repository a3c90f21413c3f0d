// Package manager owns one namespace's panel catalogue: registration,
// field normalization, and building the renderable panel model.
package manager

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/core/component"
	"github.com/arraypress/flyouts/domain/panel"
	"github.com/arraypress/flyouts/ports"
)

// DuplicateNameError reports two fields in one panel flattening to the
// same submission name. This is a configuration defect: the panel is
// rejected instead of letting the last field win silently.
type DuplicateNameError struct {
	Namespace string
	Local     string
	Name      string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("panel %s_%s: duplicate field name %q", e.Namespace, e.Local, e.Name)
}

// BuildError wraps a failure while building a panel from host data. The
// underlying cause is preserved unchanged.
type BuildError struct {
	Namespace string
	Local     string
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build panel %s_%s: %v", e.Namespace, e.Local, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Deps carries the collaborators a manager needs.
type Deps struct {
	Components *component.Registry
	Nonces     ports.NonceIssuer
	BasePath   string
	Logger     zerolog.Logger
}

// entry pairs a stored definition with its normalized flat field list.
type entry struct {
	def    *panel.Definition
	fields []panel.Field
}

// Manager owns the panels of one namespace. Panels register once and are
// read on every request; registration overwrites.
type Manager struct {
	namespace string

	components *component.Registry
	nonces     ports.NonceIssuer
	basePath   string
	logger     zerolog.Logger

	mu     sync.RWMutex
	panels map[string]entry
}

// New creates a manager for a namespace.
func New(namespace string, deps Deps) *Manager {
	basePath := deps.BasePath
	if basePath == "" {
		basePath = "/flyouts"
	}
	return &Manager{
		namespace:  namespace,
		components: deps.Components,
		nonces:     deps.Nonces,
		basePath:   basePath,
		logger:     deps.Logger.With().Str("namespace", namespace).Logger(),
	}
}

// Namespace returns the namespace this manager owns.
func (m *Manager) Namespace() string { return m.namespace }

// RegisterPanel stores a panel definition under a local id, overwriting
// any previous registration. The field tree is normalized up front so the
// flat list is ready for every later request.
func (m *Manager) RegisterPanel(local string, def *panel.Definition) error {
	if local == "" {
		return fmt.Errorf("namespace %s: panel local id is required", m.namespace)
	}
	if def == nil {
		return fmt.Errorf("panel %s_%s: definition is required", m.namespace, local)
	}

	fields, err := m.NormalizeFields(local, def.Fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.panels == nil {
		m.panels = make(map[string]entry)
	}
	m.panels[local] = entry{def: def, fields: fields}
	m.mu.Unlock()

	m.logger.Debug().Str("panel", local).Int("fields", len(fields)).Msg("panel registered")
	return nil
}

// GetPanel returns a registered definition.
func (m *Manager) GetPanel(local string) (*panel.Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.panels[local]
	if !ok {
		return nil, false
	}
	return e.def, true
}

// Fields returns the normalized flat field list for a panel.
func (m *Manager) Fields(local string) ([]panel.Field, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.panels[local]
	if !ok {
		return nil, false
	}
	return e.fields, true
}

// Locals returns the registered local ids, unordered.
func (m *Manager) Locals() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.panels))
	for local := range m.panels {
		out = append(out, local)
	}
	return out
}

// NormalizeFields flattens nested group/row declarations into one ordered
// list, defaults submission names, and resolves the computed attributes
// (element id, endpoint) rendering and sanitization both need. Nonces are
// NOT stamped here: panels outlive any nonce tick, so BuildPanel issues a
// fresh one per build. Duplicate submission names across the flat list are
// rejected.
func (m *Manager) NormalizeFields(local string, fields []panel.Field) ([]panel.Field, error) {
	flat := flatten(fields, "")

	seen := make(map[string]bool, len(flat))
	for i := range flat {
		f := &flat[i]
		if f.Name == "" {
			f.Name = f.Key
		}
		if f.Name != "" {
			if seen[f.Name] {
				return nil, &DuplicateNameError{Namespace: m.namespace, Local: local, Name: f.Name}
			}
			seen[f.Name] = true
		}
		f.ID = fmt.Sprintf("%s_%s_%s", m.namespace, local, f.Key)
		f.Endpoint = m.endpointFor(f)
	}
	return flat, nil
}

// flatten walks the declaration tree in order, dissolving containers and
// pushing the container's tab down onto its children.
func flatten(fields []panel.Field, tab string) []panel.Field {
	var out []panel.Field
	for _, f := range fields {
		if f.Tab == "" {
			f.Tab = tab
		}
		if f.IsContainer() {
			out = append(out, flatten(f.Fields, f.Tab)...)
			continue
		}
		f.Fields = nil
		out = append(out, f)
	}
	return out
}

// endpointFor computes the request URL a field's client behavior targets.
func (m *Manager) endpointFor(f *panel.Field) string {
	switch f.Type {
	case panel.TypeSearchSelect:
		return m.basePath + "/search"
	case panel.TypeButtonGroup, panel.TypeActionMenu, panel.TypeNotes:
		return m.basePath + "/action"
	default:
		return ""
	}
}

// NonceAction names the nonce scope for one panel.
func NonceAction(namespace, local string) string {
	return "flyout_" + namespace + "_" + local
}

// BuildPanel assembles the renderable model for one record: every
// normalized field paired with the data resolved for it. Host data is
// opaque and may misbehave; a panic during resolution is captured as a
// BuildError rather than a crash.
func (m *Manager) BuildPanel(local string, data any, recordID string) (p *panel.Panel, err error) {
	m.mu.RLock()
	e, ok := m.panels[local]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &BuildError{
				Namespace: m.namespace,
				Local:     local,
				Err:       fmt.Errorf("panic resolving data: %v", r),
			}
		}
	}()

	def := e.def
	built := &panel.Panel{
		ID:        m.namespace + "_" + local,
		Namespace: m.namespace,
		Local:     local,
		RecordID:  recordID,
		Title:     def.Title,
		Subtitle:  def.Subtitle,
		Size:      def.EffectiveSize(),
		Tabs:      def.Tabs,
		Footer:    def.Actions,
	}

	// Nonces expire on a tick schedule while panels live for the process
	// lifetime, so each build carries a freshly issued one. The stored
	// fields stay untouched; the copy in each component is stamped.
	nonce := ""
	if m.nonces != nil {
		nonce = m.nonces.Issue(NonceAction(m.namespace, local))
	}

	built.Components = make([]panel.Component, 0, len(e.fields))
	for _, f := range e.fields {
		f.Nonce = nonce
		built.Components = append(built.Components, panel.Component{
			Field: f,
			Data:  m.components.ResolveData(f.Type, f.Key, data),
		})
	}
	return built, nil
}
