package sanitize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arraypress/flyouts/domain/panel"
)

// recurringIntervals are the accepted price subscription intervals.
var recurringIntervals = map[string]bool{
	"day":   true,
	"week":  true,
	"month": true,
	"year":  true,
}

// registerBuiltins installs the shipped rules. Registration replaces any
// earlier entry for the same type, so calling this again is harmless.
func (s *Sanitizer) registerBuiltins() {
	textRule := func(v any, _ *panel.Field) any { return s.scalarOrList(v, cleanText) }

	s.Register(panel.TypeText, textRule)
	s.Register(panel.TypeSelect, textRule)
	s.Register(panel.TypeSearchSelect, textRule)
	s.Register(panel.TypeLink, textRule)
	s.Register(panel.TypeTextarea, func(v any, _ *panel.Field) any {
		return cleanMultiline(stringOf(v))
	})
	s.Register(panel.TypeHTML, func(v any, _ *panel.Field) any {
		return cleanHTML(stringOf(v))
	})
	s.Register(panel.TypeNumber, sanitizeNumber)
	s.Register(panel.TypeDate, sanitizeDate)
	s.Register(panel.TypeToggle, func(v any, _ *panel.Field) any {
		if truthy(v) {
			return "1"
		}
		return "0"
	})
	s.Register(panel.TypePrice, s.sanitizePrice)
	s.Register(panel.TypeLineItems, s.sanitizeLineItems)
	s.Register(panel.TypeKeyValue, s.sanitizeKeyValue)
	s.Register(panel.TypeList, s.sanitizeList)
	s.Register(panel.TypeImage, s.sanitizeAttachment)
	s.Register(panel.TypeGallery, s.sanitizeGallery)
}

// scalarOrList applies a string cleaner to a scalar or element-wise to a
// list (multi-selects submit lists).
func (s *Sanitizer) scalarOrList(v any, clean func(string) string) any {
	if items := toSlice(v); items != nil {
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, clean(stringOf(item)))
		}
		return out
	}
	return clean(stringOf(v))
}

// sanitizeNumber keeps the textual int/float distinction: a decimal point
// makes a float, anything else an integer. Unparseable input coerces to 0.
func sanitizeNumber(value any, _ *panel.Field) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return float64(v)
	case float64:
		return v
	case string:
		t := strings.TrimSpace(v)
		if t == "" {
			return int64(0)
		}
		if strings.Contains(t, ".") {
			f, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return int64(0)
			}
			return f
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return int64(0)
		}
		return n
	default:
		return int64(0)
	}
}

// sanitizeDate accepts strict YYYY-MM-DD and silently drops everything
// else to the empty string.
func sanitizeDate(value any, _ *panel.Field) any {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ""
	}
	return s
}

// sanitizePrice normalizes the price composite. Decimal string amounts are
// converted to integer minor units; compare-at is zeroed unless strictly
// greater than the amount; an invalid recurring interval nulls both the
// interval and its count.
func (s *Sanitizer) sanitizePrice(value any, f *panel.Field) any {
	m := toStringMap(value)
	if m == nil {
		m = map[string]any{}
	}

	currency := s.priceCurrency(m["currency"], f)
	amount := s.minorUnits(m["amount"], currency)
	compareAt := s.minorUnits(m["compare_at_amount"], currency)
	if compareAt <= amount {
		compareAt = 0
	}

	var interval any
	var count any
	if iv := cleanText(stringOf(m["recurring_interval"])); recurringIntervals[iv] {
		interval = iv
		n := intOf(m["recurring_interval_count"])
		if n < 1 {
			n = 1
		}
		count = n
	}

	return map[string]any{
		"amount":                   amount,
		"compare_at_amount":        compareAt,
		"currency":                 currency,
		"recurring_interval":       interval,
		"recurring_interval_count": count,
	}
}

// priceCurrency cleans a submitted currency code, falling back to the
// field's configured currency and then USD.
func (s *Sanitizer) priceCurrency(v any, f *panel.Field) string {
	code := strings.ToUpper(cleanText(stringOf(v)))
	if len(code) == 3 {
		return code
	}
	if f != nil {
		if opt, ok := f.Options["currency"].(string); ok && len(opt) == 3 {
			return strings.ToUpper(opt)
		}
	}
	return "USD"
}

// minorUnits converts a submitted amount to integer minor units. Strings
// and fractional numbers go through the currency converter; whole numbers
// are treated as already-converted minor units, which is what makes a
// second sanitize pass a no-op.
func (s *Sanitizer) minorUnits(v any, currency string) int64 {
	var units int64
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		t := strings.TrimSpace(x)
		if t == "" {
			return 0
		}
		n, err := s.currency.ToMinorUnits(t, currency)
		if err != nil {
			return 0
		}
		units = n
	case float32, float64:
		f, _ := floatOf(x)
		if isWhole(f) {
			units = int64(f)
		} else {
			n, err := s.currency.ToMinorUnits(strconv.FormatFloat(f, 'f', -1, 64), currency)
			if err != nil {
				return 0
			}
			units = n
		}
	default:
		units = intOf(x)
	}
	if units < 0 {
		return 0
	}
	return units
}

// sanitizeLineItems drops rows without a positive id, floors quantity at 1,
// and absolute-values the numeric columns.
func (s *Sanitizer) sanitizeLineItems(value any, _ *panel.Field) any {
	rows := toSlice(value)
	out := make([]any, 0, len(rows))
	for _, raw := range rows {
		row := toStringMap(raw)
		if row == nil {
			continue
		}
		id := intOf(row["id"])
		if id <= 0 {
			continue
		}
		clean := make(map[string]any, len(row))
		for k, v := range row {
			switch k {
			case "id":
				clean[k] = id
			case "quantity":
				q := intOf(v)
				if q < 1 {
					q = 1
				}
				clean[k] = q
			default:
				clean[k] = absNumeric(v)
			}
		}
		if _, ok := clean["quantity"]; !ok {
			clean["quantity"] = int64(1)
		}
		out = append(out, clean)
	}
	return out
}

// absNumeric absolute-values numeric columns and plain-cleans the rest.
func absNumeric(v any) any {
	switch x := v.(type) {
	case int, int32, int64:
		n := intOf(x)
		if n < 0 {
			n = -n
		}
		return n
	case float32, float64:
		f, _ := floatOf(x)
		if f < 0 {
			f = -f
		}
		return f
	case string:
		t := strings.TrimSpace(x)
		if _, err := strconv.ParseFloat(t, 64); err == nil {
			n := intOf(t)
			if n < 0 {
				n = -n
			}
			return n
		}
		return cleanText(x)
	default:
		return v
	}
}

// sanitizeKeyValue slug-cleans row keys, dropping rows whose key cleans to
// nothing. Duplicate keys are kept; deduplication is the host's call.
func (s *Sanitizer) sanitizeKeyValue(value any, _ *panel.Field) any {
	rows := toSlice(value)
	out := make([]any, 0, len(rows))
	for _, raw := range rows {
		row := toStringMap(raw)
		if row == nil {
			continue
		}
		key := slugify(stringOf(row["key"]))
		if key == "" {
			continue
		}
		out = append(out, map[string]any{
			"key":   key,
			"value": cleanText(stringOf(row["value"])),
		})
	}
	return out
}

// sanitizeList trims and cleans entries, dropping the blank ones. Order
// is preserved.
func (s *Sanitizer) sanitizeList(value any, _ *panel.Field) any {
	items := toSlice(value)
	if items == nil {
		if sv := cleanText(stringOf(value)); sv != "" {
			return []any{sv}
		}
		return []any{}
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		cleaned := cleanText(stringOf(item))
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// sanitizeAttachment coerces to a non-negative attachment id and zeroes
// ids the attachment checker rejects. Fails closed.
func (s *Sanitizer) sanitizeAttachment(value any, _ *panel.Field) any {
	id := intOf(value)
	if id <= 0 {
		return int64(0)
	}
	if s.attachments == nil || !s.attachments.IsValid(id) {
		return int64(0)
	}
	return id
}

// sanitizeGallery applies the attachment rule element-wise, dropping
// rejected ids.
func (s *Sanitizer) sanitizeGallery(value any, f *panel.Field) any {
	items := toSlice(value)
	out := make([]any, 0, len(items))
	for _, item := range items {
		id := s.sanitizeAttachment(item, f)
		if id == int64(0) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// cleanMultiline strips markup but keeps line structure.
func cleanMultiline(sv string) string {
	lines := strings.Split(sv, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(strictPolicy.Sanitize(line), " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stringOf renders a scalar as a string for cleaning.
func stringOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool:
		if x {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", x)
	}
}
