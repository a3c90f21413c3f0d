// Package render is a reference HTML renderer for built panels. Hosts
// normally bring their own renderer; this one produces a plain semantic
// skeleton that is useful for previews and tests.
package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/arraypress/flyouts/domain/panel"
)

const panelTemplate = `<div class="flyout flyout--{{.Size}}" data-flyout="{{.ID}}" data-item-id="{{.RecordID}}">
<header class="flyout__header">
<h2>{{.Title}}</h2>
{{- if .Subtitle}}
<p class="flyout__subtitle">{{.Subtitle}}</p>
{{- end}}
</header>
{{- if .Tabs}}
<nav class="flyout__tabs">
{{- range .Tabs}}
<button type="button" data-tab="{{.Key}}">{{.Label}}</button>
{{- end}}
</nav>
{{- end}}
<div class="flyout__body">
{{- range .Components}}
{{component .}}
{{- end}}
</div>
{{- if .Footer}}
<footer class="flyout__footer">
{{- range .Footer}}
<button type="button" class="flyout-action{{if .Primary}} is-primary{{end}}" data-action="{{.Action}}">{{.Label}}</button>
{{- end}}
</footer>
{{- end}}
</div>`

// Renderer renders panels with the reference template.
type Renderer struct {
	tmpl *template.Template
}

// New creates the reference renderer.
func New() *Renderer {
	r := &Renderer{}
	r.tmpl = template.Must(template.New("panel").
		Funcs(template.FuncMap{"component": r.component}).
		Parse(panelTemplate))
	return r
}

// RenderPanel renders a complete panel.
func (r *Renderer) RenderPanel(p *panel.Panel) (string, error) {
	var b strings.Builder
	if err := r.tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("render panel %s: %w", p.ID, err)
	}
	return b.String(), nil
}

// component renders one field with its resolved data as escaped
// attribute-tagged markup. The host front end binds behavior to the
// data attributes.
func (r *Renderer) component(c panel.Component) template.HTML {
	f := c.Field

	var b strings.Builder
	b.WriteString(`<div class="flyout-field flyout-field--`)
	template.HTMLEscape(&b, []byte(f.Type))
	b.WriteString(`" data-field="`)
	template.HTMLEscape(&b, []byte(f.ID))
	b.WriteString(`"`)
	if f.Endpoint != "" {
		b.WriteString(` data-endpoint="`)
		template.HTMLEscape(&b, []byte(f.Endpoint))
		b.WriteString(`"`)
	}
	if f.Nonce != "" {
		b.WriteString(` data-nonce="`)
		template.HTMLEscape(&b, []byte(f.Nonce))
		b.WriteString(`"`)
	}
	b.WriteString(`>`)

	if f.Label != "" {
		b.WriteString(`<label>`)
		template.HTMLEscape(&b, []byte(f.Label))
		b.WriteString(`</label>`)
	}

	switch f.Type {
	case panel.TypeHTML:
		// HTML components carry host-supplied markup verbatim.
		if v, ok := c.Data["value"].(string); ok {
			b.WriteString(v)
		}
	case panel.TypeDivider:
		b.WriteString(`<hr/>`)
	default:
		if v, ok := c.Data["value"]; ok && v != nil {
			b.WriteString(`<span class="flyout-field__value">`)
			template.HTMLEscape(&b, []byte(fmt.Sprintf("%v", v)))
			b.WriteString(`</span>`)
		}
	}

	b.WriteString(`</div>`)
	return template.HTML(b.String())
}
