// Package panel holds the domain model for flyout panels: declarative
// definitions supplied by hosts, and the built render model handed to the
// rendering layer.
package panel

// Sizes accepted by Definition.Size.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// DefaultCapability is checked when a definition declares none.
const DefaultCapability = "manage_options"

// Tab is one tab declaration. Fields reference tabs by key.
type Tab struct {
	Key   string
	Label string
}

// FooterAction is one footer button declaration.
type FooterAction struct {
	Label   string
	Action  string
	Style   string
	Primary bool
	Handler ActionFunc
}

// Definition is a host-registered panel configuration. Definitions are
// registered once and read on every request; they are not mutated after
// registration.
type Definition struct {
	Title    string
	Subtitle string
	Size     string

	Tabs   []Tab
	Fields []Field

	// Actions renders into the panel footer.
	Actions []FooterAction

	// Capability gates every operation on the panel. Empty means
	// DefaultCapability.
	Capability string

	Load     LoadFunc
	Save     SaveFunc
	Delete   DeleteFunc
	Validate ValidateFunc
}

// EffectiveCapability returns the capability the dispatcher must check.
func (d *Definition) EffectiveCapability() string {
	if d.Capability != "" {
		return d.Capability
	}
	return DefaultCapability
}

// EffectiveSize returns the declared size or the medium default.
func (d *Definition) EffectiveSize() string {
	switch d.Size {
	case SizeSmall, SizeMedium, SizeLarge:
		return d.Size
	default:
		return SizeMedium
	}
}

// Component is one instantiated field inside a built panel: the normalized
// declaration merged with the data resolved for it.
type Component struct {
	Field Field
	Data  map[string]any
}

// Panel is the built render model for one (definition, record) pair. The
// component order follows the normalized field order.
type Panel struct {
	// ID is the compound id "namespace_localId".
	ID string

	Namespace string
	Local     string
	RecordID  string

	Title    string
	Subtitle string
	Size     string

	Tabs       []Tab
	Components []Component
	Footer     []FooterAction
}

// ComponentsForTab returns the components assigned to the tab key, in order.
// An empty key selects the untabbed body.
func (p *Panel) ComponentsForTab(key string) []Component {
	var out []Component
	for _, c := range p.Components {
		if c.Field.Tab == key {
			out = append(out, c)
		}
	}
	return out
}
