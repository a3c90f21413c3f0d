package manager

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/core/component"
	"github.com/arraypress/flyouts/domain/panel"
)

// stubNonces issues a fixed nonce so computed attributes are assertable.
type stubNonces struct{}

func (stubNonces) Issue(action string) string { return "nonce-" + action }

func (stubNonces) Verify(action, nonce string) bool { return nonce == "nonce-"+action }

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return New("shop", Deps{
		Components: component.NewRegistry(),
		Nonces:     stubNonces{},
		BasePath:   "/flyouts",
		Logger:     zerolog.Nop(),
	})
}

func orderDefinition() *panel.Definition {
	return &panel.Definition{
		Title: "Order",
		Tabs:  []panel.Tab{{Key: "details", Label: "Details"}},
		Fields: []panel.Field{
			{Key: "number", Type: panel.TypeText},
			{
				Key:  "billing",
				Type: panel.TypeGroup,
				Tab:  "details",
				Fields: []panel.Field{
					{Key: "total", Type: panel.TypeNumber},
					{Key: "paid_on", Type: panel.TypeDate},
				},
			},
			{Key: "customer", Type: panel.TypeSearchSelect, Search: &panel.SearchConfig{}},
		},
	}
}

func TestRegisterPanel(t *testing.T) {
	m := newTestManager(t)

	if err := m.RegisterPanel("order", orderDefinition()); err != nil {
		t.Fatalf("RegisterPanel() error = %v", err)
	}
	if _, ok := m.GetPanel("order"); !ok {
		t.Error("GetPanel() should find registered panel")
	}

	t.Run("empty local rejected", func(t *testing.T) {
		if err := m.RegisterPanel("", orderDefinition()); err == nil {
			t.Error("RegisterPanel(\"\") should fail")
		}
	})

	t.Run("nil definition rejected", func(t *testing.T) {
		if err := m.RegisterPanel("order", nil); err == nil {
			t.Error("RegisterPanel(nil) should fail")
		}
	})

	t.Run("overwrite allowed", func(t *testing.T) {
		def := orderDefinition()
		def.Title = "Order v2"
		if err := m.RegisterPanel("order", def); err != nil {
			t.Fatalf("RegisterPanel() error = %v", err)
		}
		got, _ := m.GetPanel("order")
		if got.Title != "Order v2" {
			t.Errorf("Title = %q, want Order v2", got.Title)
		}
	})
}

func TestGetPanel_Unknown(t *testing.T) {
	m := newTestManager(t)
	if _, ok := m.GetPanel("nope"); ok {
		t.Error("GetPanel() should not find unregistered panel")
	}
	if _, ok := m.Fields("nope"); ok {
		t.Error("Fields() should not find unregistered panel")
	}
}

func TestNormalizeFields(t *testing.T) {
	m := newTestManager(t)
	if err := m.RegisterPanel("order", orderDefinition()); err != nil {
		t.Fatalf("RegisterPanel() error = %v", err)
	}
	fields, _ := m.Fields("order")

	t.Run("containers dissolved in order", func(t *testing.T) {
		var keys []string
		for _, f := range fields {
			keys = append(keys, f.Key)
		}
		want := "number,total,paid_on,customer"
		if got := strings.Join(keys, ","); got != want {
			t.Errorf("flat keys = %s, want %s", got, want)
		}
	})

	t.Run("container tab pushed onto children", func(t *testing.T) {
		for _, f := range fields {
			if f.Key == "total" && f.Tab != "details" {
				t.Errorf("total.Tab = %q, want details", f.Tab)
			}
		}
	})

	t.Run("computed attributes", func(t *testing.T) {
		for _, f := range fields {
			if f.ID != "shop_order_"+f.Key {
				t.Errorf("ID = %q, want shop_order_%s", f.ID, f.Key)
			}
			if f.Name == "" {
				t.Errorf("field %q has no submission name", f.Key)
			}
			// Nonces expire; only built panels carry them.
			if f.Nonce != "" {
				t.Errorf("stored field %q carries nonce %q", f.Key, f.Nonce)
			}
		}
	})

	t.Run("search field endpoint", func(t *testing.T) {
		for _, f := range fields {
			if f.Type == panel.TypeSearchSelect && f.Endpoint != "/flyouts/search" {
				t.Errorf("Endpoint = %q, want /flyouts/search", f.Endpoint)
			}
		}
	})
}

func TestNormalizeFields_DuplicateName(t *testing.T) {
	m := newTestManager(t)
	def := &panel.Definition{
		Fields: []panel.Field{
			{Key: "sku", Type: panel.TypeText},
			{Key: "other", Name: "sku", Type: panel.TypeText},
		},
	}
	err := m.RegisterPanel("product", def)
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("RegisterPanel() error = %v, want DuplicateNameError", err)
	}
	if dup.Name != "sku" {
		t.Errorf("duplicate name = %q, want sku", dup.Name)
	}
	if _, ok := m.GetPanel("product"); ok {
		t.Error("panel with duplicate names must not be registered")
	}
}

func TestBuildPanel(t *testing.T) {
	m := newTestManager(t)
	if err := m.RegisterPanel("order", orderDefinition()); err != nil {
		t.Fatalf("RegisterPanel() error = %v", err)
	}

	data := map[string]any{"number": "INV-1", "total": 42}
	p, err := m.BuildPanel("order", data, "7")
	if err != nil {
		t.Fatalf("BuildPanel() error = %v", err)
	}
	if p.ID != "shop_order" {
		t.Errorf("ID = %q, want shop_order", p.ID)
	}
	if p.RecordID != "7" {
		t.Errorf("RecordID = %q, want 7", p.RecordID)
	}
	if len(p.Components) != 4 {
		t.Fatalf("components = %d, want 4", len(p.Components))
	}
	if p.Components[0].Data["value"] != "INV-1" {
		t.Errorf("number data = %v, want INV-1", p.Components[0].Data["value"])
	}
	if p.Components[1].Data["value"] != 42 {
		t.Errorf("total data = %v, want 42", p.Components[1].Data["value"])
	}

	t.Run("unknown panel yields nil", func(t *testing.T) {
		p, err := m.BuildPanel("missing", data, "7")
		if p != nil || err != nil {
			t.Errorf("BuildPanel(missing) = %v, %v, want nil, nil", p, err)
		}
	})

	t.Run("tab filter", func(t *testing.T) {
		body := p.ComponentsForTab("")
		if len(body) != 2 {
			t.Errorf("untabbed components = %d, want 2", len(body))
		}
		details := p.ComponentsForTab("details")
		if len(details) != 2 {
			t.Errorf("details components = %d, want 2", len(details))
		}
	})

	t.Run("components carry nonce", func(t *testing.T) {
		for _, c := range p.Components {
			if c.Field.Nonce != "nonce-flyout_shop_order" {
				t.Errorf("%s nonce = %q", c.Field.Key, c.Field.Nonce)
			}
		}
	})
}

// countingNonces issues a distinct token per call.
type countingNonces struct{ n int }

func (c *countingNonces) Issue(action string) string { c.n++; return fmt.Sprintf("%s#%d", action, c.n) }

func (c *countingNonces) Verify(action, nonce string) bool { return false }

func TestBuildPanel_FreshNoncePerBuild(t *testing.T) {
	issuer := &countingNonces{}
	m := New("shop", Deps{
		Components: component.NewRegistry(),
		Nonces:     issuer,
		Logger:     zerolog.Nop(),
	})
	if err := m.RegisterPanel("order", orderDefinition()); err != nil {
		t.Fatalf("RegisterPanel() error = %v", err)
	}

	first, err := m.BuildPanel("order", map[string]any{}, "1")
	if err != nil {
		t.Fatalf("BuildPanel() error = %v", err)
	}
	second, err := m.BuildPanel("order", map[string]any{}, "1")
	if err != nil {
		t.Fatalf("BuildPanel() error = %v", err)
	}

	a := first.Components[0].Field.Nonce
	b := second.Components[0].Field.Nonce
	if a == "" || b == "" || a == b {
		t.Errorf("nonces = %q, %q, want distinct per build", a, b)
	}

	// Every field in one build shares the build's nonce.
	for _, c := range second.Components {
		if c.Field.Nonce != b {
			t.Errorf("%s nonce = %q, want %q", c.Field.Key, c.Field.Nonce, b)
		}
	}

	// The stored fields stay unstamped.
	fields, _ := m.Fields("order")
	for _, f := range fields {
		if f.Nonce != "" {
			t.Errorf("stored field %q mutated to nonce %q", f.Key, f.Nonce)
		}
	}
}

// explosive panics on any accessor call via a method that reads through a
// nil pointer.
type explosive struct{ p *explosive }

func (e explosive) NumberData() any { return e.p.NumberData() }

func TestBuildPanel_HostPanicBecomesError(t *testing.T) {
	m := newTestManager(t)
	def := &panel.Definition{Fields: []panel.Field{{Key: "number", Type: panel.TypeText}}}
	if err := m.RegisterPanel("order", def); err != nil {
		t.Fatalf("RegisterPanel() error = %v", err)
	}

	// The component layer recovers accessor panics itself, so resolution
	// degrades instead of erroring; BuildPanel must not crash either way.
	p, err := m.BuildPanel("order", explosive{}, "1")
	if err != nil {
		var be *BuildError
		if !errors.As(err, &be) {
			t.Fatalf("BuildPanel() error = %v, want BuildError", err)
		}
		return
	}
	if p == nil {
		t.Fatal("BuildPanel() returned nil panel without error")
	}
}

func TestMarkupHelpers(t *testing.T) {
	m := newTestManager(t)

	t.Run("button", func(t *testing.T) {
		got := m.ButtonMarkup("order", TriggerOptions{Label: "Edit <order>", RecordID: "5"})
		for _, want := range []string{
			`data-flyout="shop_order"`,
			`data-item-id="5"`,
			`class="flyout-trigger"`,
			"Edit &lt;order&gt;",
			"<button type=\"button\"",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("ButtonMarkup() = %s, missing %s", got, want)
			}
		}
	})

	t.Run("link with extra attributes", func(t *testing.T) {
		got := m.LinkMarkup("order", "", TriggerOptions{
			Label:      "Open",
			Attributes: map[string]string{"b": "2", "a": "1"},
		})
		if !strings.Contains(got, `href="#"`) {
			t.Errorf("LinkMarkup() = %s, missing default href", got)
		}
		// Deterministic attribute order.
		if strings.Index(got, `data-a="1"`) > strings.Index(got, `data-b="2"`) {
			t.Errorf("LinkMarkup() attributes not sorted: %s", got)
		}
	})
}
