// Package sanitize implements the save-time cleaning pipeline: a type-keyed
// registry of sanitize rules with per-field overrides and a generic fallback.
// Sanitization never fails; at worst a value degrades to its empty form.
package sanitize

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arraypress/flyouts/domain/panel"
	"github.com/arraypress/flyouts/ports"
)

// Func cleans one submitted value. The field declaration is passed for
// rules that read type-specific options; it may be nil.
type Func func(value any, f *panel.Field) any

// Deps carries the collaborators the built-in rules need.
type Deps struct {
	Currency    ports.CurrencyConverter
	Attachments ports.AttachmentChecker
	Logger      zerolog.Logger
}

// Sanitizer maps field types to sanitize rules and runs the form pipeline.
type Sanitizer struct {
	mu    sync.RWMutex
	rules map[string]Func

	currency    ports.CurrencyConverter
	attachments ports.AttachmentChecker
	logger      zerolog.Logger
}

// New creates a sanitizer pre-populated with the built-in rules.
func New(deps Deps) *Sanitizer {
	s := &Sanitizer{
		rules:       make(map[string]Func),
		currency:    deps.Currency,
		attachments: deps.Attachments,
		logger:      deps.Logger,
	}
	s.registerBuiltins()
	return s
}

// Register adds or replaces the rule for a type. Later registrations win.
func (s *Sanitizer) Register(typ string, fn Func) {
	if typ == "" || fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[typ] = fn
}

// Unregister removes the rule for a type, sending it to the fallback.
func (s *Sanitizer) Unregister(typ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, typ)
}

// rule returns the registered rule for a type.
func (s *Sanitizer) rule(typ string) (Func, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.rules[typ]
	return fn, ok
}

// Sanitize cleans one value for a field. A field-level override wins
// outright; otherwise the type's rule runs; unknown types go through the
// generic fallback.
func (s *Sanitizer) Sanitize(value any, f *panel.Field) any {
	if f != nil && f.Sanitize != nil {
		return f.Sanitize(value)
	}
	if f != nil {
		if fn, ok := s.rule(f.Type); ok {
			return fn(value, f)
		}
		s.logger.Debug().Str("type", f.Type).Str("field", f.Key).
			Msg("no sanitize rule for type, using fallback")
	}
	return s.Fallback(value)
}

// Fallback is the shape-driven generic cleaner: element-wise for composites,
// plain clean for scalars.
func (s *Sanitizer) Fallback(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, s.Fallback(item))
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = s.Fallback(item)
		}
		return out
	case string:
		return cleanText(v)
	case bool, int, int32, int64, float32, float64:
		return v
	default:
		// Other slices/maps via reflection; remaining scalars pass through.
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			out := make([]any, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out = append(out, s.Fallback(rv.Index(i).Interface()))
			}
			return out
		case reflect.Map:
			if m := toStringMap(value); m != nil {
				return s.Fallback(m)
			}
		}
		return value
	}
}

// SanitizeForm cleans every submitted key. Declared keys are cleaned by
// their field's type; keys with no matching declaration still pass through
// the generic fallback so nothing submitted is silently dropped.
func (s *Sanitizer) SanitizeForm(raw map[string]any, fields []panel.Field) map[string]any {
	byName := make(map[string]*panel.Field, len(fields))
	for i := range fields {
		byName[fields[i].SubmissionName()] = &fields[i]
	}

	out := make(map[string]any, len(raw))
	for key, value := range raw {
		if f, ok := byName[key]; ok {
			out[key] = s.Sanitize(value, f)
			continue
		}
		out[key] = s.Fallback(value)
	}
	return out
}
