package component

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// sourceKind tags the variants a data source can take. Resolution strategies
// switch on the tag instead of probing arbitrary values.
type sourceKind int

const (
	// kindNone covers nil, scalars, and slices: nothing to look inside.
	kindNone sourceKind = iota

	// kindMapping covers maps with string keys.
	kindMapping

	// kindStructured covers structs and pointers to structs.
	kindStructured
)

// source is the tagged view over a host-supplied record. All reflection in
// the package is confined to this adapter; the strategy list above it only
// sees the capability checks.
type source struct {
	kind sourceKind
	v    reflect.Value
}

// newSource classifies a raw host value.
func newSource(raw any) source {
	if raw == nil {
		return source{kind: kindNone}
	}
	v := reflect.ValueOf(raw)
	switch deref(v).Kind() {
	case reflect.Map:
		if deref(v).Type().Key().Kind() == reflect.String {
			return source{kind: kindMapping, v: v}
		}
		return source{kind: kindNone, v: v}
	case reflect.Struct:
		return source{kind: kindStructured, v: v}
	default:
		return source{kind: kindNone, v: v}
	}
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

// call invokes a zero-argument method by name and returns its first result.
// Host methods are opaque; a panic inside one degrades to "not found".
func (s source) call(name string) (result any, ok bool) {
	if !s.v.IsValid() {
		return nil, false
	}
	m := s.v.MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	t := m.Type()
	if t.NumIn() != 0 || t.NumOut() == 0 {
		return nil, false
	}
	defer func() {
		if recover() != nil {
			result, ok = nil, false
		}
	}()
	out := m.Call(nil)
	return out[0].Interface(), true
}

// mapValue returns the entry for key when the source is a mapping.
func (s source) mapValue(key string) (any, bool) {
	if s.kind != kindMapping {
		return nil, false
	}
	m := deref(s.v)
	entry := m.MapIndex(reflect.ValueOf(key))
	if !entry.IsValid() {
		return nil, false
	}
	return entry.Interface(), true
}

// field returns an exported struct field by name.
func (s source) field(name string) (any, bool) {
	if s.kind != kindStructured {
		return nil, false
	}
	st := deref(s.v)
	f := st.FieldByName(name)
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

// exportFirst upper-cases the first rune only: "total" -> "Total",
// "first_name" -> "First_name". This is the literal-key pass.
func exportFirst(key string) string {
	if key == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(r)) + key[size:]
}

// exportCamel upper-camels a snake_case key: "first_name" -> "FirstName".
// This is the legacy-compatibility pass for separator-bearing keys.
func exportCamel(key string) string {
	parts := strings.Split(key, "_")
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(exportFirst(p))
	}
	return b.String()
}
