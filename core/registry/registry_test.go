package registry

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/core/component"
	"github.com/arraypress/flyouts/core/manager"
)

func testFactory() Factory {
	components := component.NewRegistry()
	return func(ns string) *manager.Manager {
		return manager.New(ns, manager.Deps{
			Components: components,
			Logger:     zerolog.Nop(),
		})
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		id        string
		namespace string
		local     string
		ok        bool
	}{
		{"shop_order", "shop", "order", true},
		{"shop_order_details", "shop", "order_details", true},
		{"a_b", "a", "b", true},
		{"shop_", "shop", "", true},
		{"noseparator", "", "", false},
		{"_leading", "", "", false},
		{"", "", "", false},
		{"_", "", "", false},
	}
	for _, c := range cases {
		ns, local, ok := ParseID(c.id)
		if ns != c.namespace || local != c.local || ok != c.ok {
			t.Errorf("ParseID(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.id, ns, local, ok, c.namespace, c.local, c.ok)
		}
	}
}

func TestJoinID_RoundTrip(t *testing.T) {
	// Every ns_local with non-empty ns not starting with "_" parses back.
	for _, pair := range [][2]string{{"shop", "order"}, {"a", "b_c"}, {"crm_pro", "lead"}} {
		id := JoinID(pair[0], pair[1])
		ns, local, ok := ParseID(id)
		if !ok {
			t.Errorf("ParseID(JoinID(%q, %q)) not ok", pair[0], pair[1])
			continue
		}
		// Splitting on the first underscore: a namespace containing an
		// underscore round-trips into a shorter namespace.
		if JoinID(ns, local) != id {
			t.Errorf("JoinID(ParseID(%q)) = %q", id, JoinID(ns, local))
		}
	}
}

func TestRegistry_RegisterGet(t *testing.T) {
	r := New(testFactory())
	m := testFactory()("shop")

	r.Register("shop", m)
	got, ok := r.Get("shop")
	if !ok || got != m {
		t.Error("Get() should return the registered manager")
	}
	if !r.Has("shop") {
		t.Error("Has() should report registered namespace")
	}
	if r.Has("other") {
		t.Error("Has() should not report unknown namespace")
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := New(testFactory())

	t.Run("malformed id", func(t *testing.T) {
		if _, _, ok := r.Resolve("nounderscore", true); ok {
			t.Error("Resolve(malformed) should not succeed")
		}
	})

	t.Run("unknown without create", func(t *testing.T) {
		if _, _, ok := r.Resolve("shop_order", false); ok {
			t.Error("Resolve() without create should not invent a namespace")
		}
	})

	t.Run("create on first reference", func(t *testing.T) {
		m, local, ok := r.Resolve("shop_order", true)
		if !ok || m == nil {
			t.Fatal("Resolve() with create should construct the manager")
		}
		if local != "order" {
			t.Errorf("local = %q, want order", local)
		}
		if m.Namespace() != "shop" {
			t.Errorf("Namespace() = %q, want shop", m.Namespace())
		}
	})

	t.Run("second resolve reuses instance", func(t *testing.T) {
		m1, _, _ := r.Resolve("crm_lead", true)
		m2, _, _ := r.Resolve("crm_contact", true)
		if m1 != m2 {
			t.Error("managers for one namespace must be the same instance")
		}
	})
}

func TestRegistry_GetOrCreate_SingleWinner(t *testing.T) {
	r := New(testFactory())

	const goroutines = 32
	var wg sync.WaitGroup
	results := make([]*manager.Manager, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, _ := r.GetOrCreate("shop")
			results[i] = m
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent first references produced divergent managers")
		}
	}
}

func TestRegistry_NoFactory(t *testing.T) {
	r := New(nil)
	if _, ok := r.GetOrCreate("shop"); ok {
		t.Error("GetOrCreate() without factory should fail")
	}
}

func TestRegistry_Namespaces(t *testing.T) {
	r := New(testFactory())
	r.GetOrCreate("b")
	r.GetOrCreate("a")
	got := r.Namespaces()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Namespaces() = %v, want [a b]", got)
	}
}
