package manager

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// TriggerOptions configures the markup helpers. Every value is escaped.
type TriggerOptions struct {
	Label    string
	RecordID string
	Class    string

	// Attributes adds extra data-* attributes to the trigger element.
	Attributes map[string]string
}

// ButtonMarkup builds a <button> trigger carrying the compound id the
// client script uses to open the panel.
func (m *Manager) ButtonMarkup(local string, opts TriggerOptions) string {
	return m.trigger("button", "", local, opts)
}

// LinkMarkup builds an <a> trigger for the panel.
func (m *Manager) LinkMarkup(local, href string, opts TriggerOptions) string {
	if href == "" {
		href = "#"
	}
	return m.trigger("a", href, local, opts)
}

func (m *Manager) trigger(tag, href, local string, opts TriggerOptions) string {
	compound := m.namespace + "_" + local

	classes := "flyout-trigger"
	if opts.Class != "" {
		classes += " " + opts.Class
	}

	var b strings.Builder
	b.WriteString("<" + tag)
	if tag == "a" {
		fmt.Fprintf(&b, ` href="%s"`, html.EscapeString(href))
	} else {
		b.WriteString(` type="button"`)
	}
	fmt.Fprintf(&b, ` class="%s"`, html.EscapeString(classes))
	fmt.Fprintf(&b, ` data-flyout="%s"`, html.EscapeString(compound))
	if opts.RecordID != "" {
		fmt.Fprintf(&b, ` data-item-id="%s"`, html.EscapeString(opts.RecordID))
	}
	for _, kv := range attrList(opts.Attributes) {
		fmt.Fprintf(&b, ` data-%s="%s"`, html.EscapeString(kv[0]), html.EscapeString(kv[1]))
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(opts.Label))
	b.WriteString("</" + tag + ">")
	return b.String()
}

// attrList orders extra attributes by key for deterministic markup.
func attrList(attrs map[string]string) [][2]string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, attrs[k]})
	}
	return out
}
