package component

import "reflect"

// Empty is the sentinel returned when no strategy can produce a value.
// Resolution never fails; absent data renders as an empty field.
const Empty = ""

// ResolveValue extracts the value for key from a host record using an
// ordered, short-circuiting strategy list:
//
//  1. a zero-arg accessor named {Key}Data returns a complete composite
//     value as-is (for snake_case keys the camel-cased accessor counts);
//  2. a mapping entry under the literal key;
//  3. sources that are not object-like resolve to Empty;
//  4. a zero-arg getter Get{Key};
//  5. a readable field {Key};
//  6. a zero-arg method {Key};
//  7. for snake_case keys, steps 4-6 retried with the camel-cased name;
//  8. Empty.
//
// Mapping access deliberately outranks accessors: a map entry "total" wins
// over a GetTotal method on the same source.
func ResolveValue(key string, raw any) any {
	src := newSource(raw)

	first := exportFirst(key)
	camel := exportCamel(key)

	if v, ok := src.call(first + "Data"); ok {
		return v
	}
	if camel != first {
		if v, ok := src.call(camel + "Data"); ok {
			return v
		}
	}

	if v, ok := src.mapValue(key); ok {
		return v
	}

	if src.kind == kindNone {
		return Empty
	}

	names := []string{first}
	if camel != first {
		names = append(names, camel)
	}
	for _, name := range names {
		if v, ok := src.call("Get" + name); ok {
			return v
		}
		if v, ok := src.field(name); ok {
			return v
		}
		if v, ok := src.call(name); ok {
			return v
		}
	}

	return Empty
}

// asStringMap views v as a string-keyed map, or nil.
func asStringMap(v any) map[string]any {
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
