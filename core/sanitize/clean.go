package sanitize

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// cleanText strips all markup and trims. Already-clean text passes
// through unchanged, which keeps the pipeline idempotent.
func cleanText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// cleanHTML keeps user-generated-content markup and drops the rest.
func cleanHTML(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// slugify lowers a key to [a-z0-9_-], mapping whitespace to hyphens and
// dropping everything else.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteRune('-')
		}
	}
	return b.String()
}

// intOf coerces loosely-typed numeric input to int64. Unparseable input
// coerces to 0.
func intOf(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		t := strings.TrimSpace(x)
		if t == "" {
			return 0
		}
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int64(f)
		}
		return 0
	default:
		return 0
	}
}

// floatOf coerces loosely-typed numeric input to float64.
func floatOf(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// isWhole reports whether f has no fractional part.
func isWhole(f float64) bool {
	return f == math.Trunc(f)
}

// truthy implements the toggle coercion: nil, false, zero, "", "0", and
// "false" are off; everything else is on.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		t := strings.ToLower(strings.TrimSpace(x))
		return t != "" && t != "0" && t != "false"
	case int, int32, int64, uint, uint64:
		return intOf(x) != 0
	case float32, float64:
		f, _ := floatOf(x)
		return f != 0
	default:
		return false
	}
}

// toStringMap views any string-keyed map as map[string]any, or nil.
func toStringMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

// toSlice views any slice or array as []any, or nil.
func toSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}
