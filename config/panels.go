package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arraypress/flyouts/core/hostfn"
	"github.com/arraypress/flyouts/domain/panel"
)

// Manifest declares one manager namespace and its panels. Callbacks are
// referenced by name and resolved against a hostfn registry at build
// time.
type Manifest struct {
	Manager string          `yaml:"manager"`
	Panels  []PanelManifest `yaml:"panels"`
}

// PanelManifest declares one panel.
type PanelManifest struct {
	ID         string           `yaml:"id"`
	Title      string           `yaml:"title"`
	Subtitle   string           `yaml:"subtitle,omitempty"`
	Size       string           `yaml:"size,omitempty"`
	Capability string           `yaml:"capability,omitempty"`
	Tabs       []TabManifest    `yaml:"tabs,omitempty"`
	Fields     []FieldManifest  `yaml:"fields"`
	Actions    []ActionManifest `yaml:"actions,omitempty"`
	Callbacks  CallbackRefs     `yaml:"callbacks"`
}

// TabManifest declares one tab.
type TabManifest struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
}

// CallbackRefs names the panel-level host callbacks.
type CallbackRefs struct {
	Load     string `yaml:"load,omitempty"`
	Save     string `yaml:"save,omitempty"`
	Delete   string `yaml:"delete,omitempty"`
	Validate string `yaml:"validate,omitempty"`
}

// FieldManifest declares one field, including nested container fields.
type FieldManifest struct {
	Key         string           `yaml:"key"`
	Type        string           `yaml:"type"`
	Name        string           `yaml:"name,omitempty"`
	Label       string           `yaml:"label,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Placeholder string           `yaml:"placeholder,omitempty"`
	Tab         string           `yaml:"tab,omitempty"`
	Editable    bool             `yaml:"editable,omitempty"`
	Required    bool             `yaml:"required,omitempty"`
	Options     map[string]any   `yaml:"options,omitempty"`
	Fields      []FieldManifest  `yaml:"fields,omitempty"`
	Items       []ActionManifest `yaml:"items,omitempty"`
	Notes       *NotesManifest   `yaml:"notes,omitempty"`
	Search      *SearchManifest  `yaml:"search,omitempty"`
}

// ActionManifest declares a button, menu item, or footer action.
type ActionManifest struct {
	Label     string `yaml:"label,omitempty"`
	Action    string `yaml:"action,omitempty"`
	Style     string `yaml:"style,omitempty"`
	Confirm   string `yaml:"confirm,omitempty"`
	Primary   bool   `yaml:"primary,omitempty"`
	Separator bool   `yaml:"separator,omitempty"`
	Handler   string `yaml:"handler,omitempty"`
}

// NotesManifest declares a notes field's actions.
type NotesManifest struct {
	AddAction    string `yaml:"add_action"`
	DeleteAction string `yaml:"delete_action"`
	Handler      string `yaml:"handler"`
}

// SearchManifest declares a search field's callback.
type SearchManifest struct {
	Placeholder string `yaml:"placeholder,omitempty"`
	Multiple    bool   `yaml:"multiple,omitempty"`
	Handler     string `yaml:"handler"`
}

// LoadManifest reads one manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Manager == "" {
		return nil, fmt.Errorf("manifest %s: manager is required", path)
	}
	if strings.Contains(m.Manager, "_") {
		return nil, fmt.Errorf("manifest %s: manager %q must not contain underscores", path, m.Manager)
	}
	for i, p := range m.Panels {
		if p.ID == "" {
			return nil, fmt.Errorf("manifest %s: panels[%d].id is required", path, i)
		}
	}
	return &m, nil
}

// LoadManifests reads every manifest configured: a directory scan for
// *.yaml and *.yml, then the explicit file list.
func LoadManifests(pc PanelsConfig) ([]*Manifest, error) {
	var paths []string
	if pc.Dir != "" {
		entries, err := os.ReadDir(pc.Dir)
		if err != nil {
			return nil, fmt.Errorf("scan panels dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			if ext == ".yaml" || ext == ".yml" {
				paths = append(paths, filepath.Join(pc.Dir, e.Name()))
			}
		}
		sort.Strings(paths)
	}
	paths = append(paths, pc.Files...)

	out := make([]*Manifest, 0, len(paths))
	for _, p := range paths {
		m, err := LoadManifest(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Definitions resolves the manifest's callback names against the
// registry and returns the panel definitions keyed by local id.
func (m *Manifest) Definitions(fns *hostfn.Registry) (map[string]*panel.Definition, error) {
	out := make(map[string]*panel.Definition, len(m.Panels))
	for i := range m.Panels {
		pm := &m.Panels[i]
		def, err := pm.definition(fns)
		if err != nil {
			return nil, fmt.Errorf("panel %s_%s: %w", m.Manager, pm.ID, err)
		}
		out[pm.ID] = def
	}
	return out, nil
}

func (pm *PanelManifest) definition(fns *hostfn.Registry) (*panel.Definition, error) {
	def := &panel.Definition{
		Title:      pm.Title,
		Subtitle:   pm.Subtitle,
		Size:       pm.Size,
		Capability: pm.Capability,
	}

	for _, t := range pm.Tabs {
		def.Tabs = append(def.Tabs, panel.Tab{Key: t.Key, Label: t.Label})
	}

	var err error
	if pm.Callbacks.Load != "" {
		if def.Load, err = fns.Load(pm.Callbacks.Load); err != nil {
			return nil, err
		}
	}
	if pm.Callbacks.Save != "" {
		if def.Save, err = fns.Save(pm.Callbacks.Save); err != nil {
			return nil, err
		}
	}
	if pm.Callbacks.Delete != "" {
		if def.Delete, err = fns.Delete(pm.Callbacks.Delete); err != nil {
			return nil, err
		}
	}
	if pm.Callbacks.Validate != "" {
		if def.Validate, err = fns.Validate(pm.Callbacks.Validate); err != nil {
			return nil, err
		}
	}

	for _, fm := range pm.Fields {
		f, err := fm.field(fns)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, f)
	}

	for _, am := range pm.Actions {
		fa := panel.FooterAction{
			Label:   am.Label,
			Action:  am.Action,
			Style:   am.Style,
			Primary: am.Primary,
		}
		if am.Handler != "" {
			if fa.Handler, err = fns.Action(am.Handler); err != nil {
				return nil, err
			}
		}
		def.Actions = append(def.Actions, fa)
	}

	return def, nil
}

func (fm *FieldManifest) field(fns *hostfn.Registry) (panel.Field, error) {
	f := panel.Field{
		Key:         fm.Key,
		Type:        fm.Type,
		Name:        fm.Name,
		Label:       fm.Label,
		Description: fm.Description,
		Placeholder: fm.Placeholder,
		Tab:         fm.Tab,
		Editable:    fm.Editable,
		Required:    fm.Required,
		Options:     fm.Options,
	}

	for _, child := range fm.Fields {
		cf, err := child.field(fns)
		if err != nil {
			return panel.Field{}, err
		}
		f.Fields = append(f.Fields, cf)
	}

	for _, im := range fm.Items {
		item := panel.ActionItem{
			Label:     im.Label,
			Action:    im.Action,
			Style:     im.Style,
			Confirm:   im.Confirm,
			Separator: im.Separator,
		}
		if im.Handler != "" {
			h, err := fns.Action(im.Handler)
			if err != nil {
				return panel.Field{}, fmt.Errorf("field %s: %w", fm.Key, err)
			}
			item.Handler = h
		}
		f.Items = append(f.Items, item)
	}

	if fm.Notes != nil {
		h, err := fns.Action(fm.Notes.Handler)
		if err != nil {
			return panel.Field{}, fmt.Errorf("field %s: %w", fm.Key, err)
		}
		f.Notes = &panel.NotesConfig{
			AddAction:    fm.Notes.AddAction,
			DeleteAction: fm.Notes.DeleteAction,
			Handler:      h,
		}
	}

	if fm.Search != nil {
		s, err := fns.Search(fm.Search.Handler)
		if err != nil {
			return panel.Field{}, fmt.Errorf("field %s: %w", fm.Key, err)
		}
		f.Search = &panel.SearchConfig{
			Placeholder: fm.Search.Placeholder,
			Multiple:    fm.Search.Multiple,
			Search:      s,
		}
	}

	return f, nil
}
