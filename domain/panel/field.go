package panel

// Built-in component type discriminators. Hosts may register additional
// types against the component registry; these are the ones shipped with
// descriptors and sanitize rules.
const (
	TypeText         = "text"
	TypeTextarea     = "textarea"
	TypeNumber       = "number"
	TypeDate         = "date"
	TypeToggle       = "toggle"
	TypeSelect       = "select"
	TypeSearchSelect = "search_select"
	TypePrice        = "price"
	TypeLineItems    = "line_items"
	TypeKeyValue     = "key_value"
	TypeList         = "list"
	TypeImage        = "image"
	TypeGallery      = "gallery"
	TypeNotes        = "notes"
	TypeButtonGroup  = "button_group"
	TypeActionMenu   = "action_menu"
	TypeHeader       = "header"
	TypeLink         = "link"
	TypeHTML         = "html"
	TypeDivider      = "divider"
	TypeGroup        = "group"
	TypeRow          = "row"
)

// SanitizeFunc cleans one submitted value. A Field-level override wins over
// the type's registered rule.
type SanitizeFunc func(value any) any

// Field is one typed entry in a panel's field list. Type selects the
// renderer, data shape, and sanitize rule; the optional nested configs are
// the tagged variants for types that carry sub-items or callbacks.
type Field struct {
	// Key addresses the value inside the loaded record.
	Key string

	// Type is the component type discriminator.
	Type string

	// Name is the submission key. Defaults to Key during normalization.
	// Must be unique within one panel's flattened field list.
	Name string

	Label       string
	Description string
	Placeholder string

	// Tab assigns the field to a tab key. Empty means the untabbed body.
	Tab string

	// Editable marks display-oriented types (header) as editable, which
	// changes their asset requirements.
	Editable bool

	// Required is advisory for rendering; enforcement is host validation.
	Required bool

	// Options holds type-specific presentation settings (select choices,
	// currency for price fields, row labels).
	Options map[string]any

	// Fields nests declarations for group/row container types. Containers
	// are flattened away during normalization.
	Fields []Field

	// Items configures button_group and action_menu entries.
	Items []ActionItem

	// Notes configures the notes variant.
	Notes *NotesConfig

	// Search configures the search_select variant.
	Search *SearchConfig

	// Sanitize overrides the type's sanitize rule for this field only.
	Sanitize SanitizeFunc

	// ID and Endpoint are computed during normalization; zero until then.
	ID       string
	Endpoint string

	// Nonce is stamped on the component's field copy each time a panel
	// is built, never on the stored declaration.
	Nonce string
}

// SubmissionName returns the key this field is posted under.
func (f *Field) SubmissionName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Key
}

// IsContainer reports whether the field only groups other fields.
func (f *Field) IsContainer() bool {
	return f.Type == TypeGroup || f.Type == TypeRow
}

// ActionItem is one entry in a button group or action menu. Separator
// entries render a divider and are skipped by the action lookup.
type ActionItem struct {
	Label     string
	Action    string
	Style     string
	Confirm   string
	Separator bool
	Handler   ActionFunc
}

// NotesConfig configures a notes field: a timeline with add/delete actions
// routed to one handler.
type NotesConfig struct {
	AddAction    string
	DeleteAction string
	Handler      ActionFunc
}

// SearchConfig configures a search_select field. Exactly one of Search or
// Raw should be set; Raw is the legacy path whose result shape is passed
// through untouched.
type SearchConfig struct {
	Placeholder string
	Multiple    bool
	Search      SearchFunc
	Raw         RawSearchFunc
}
