package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// rangeSeparators split "45-60" style day ranges. The en dash shows up in
// model output as often as the ASCII hyphen.
var rangeSeparators = []string{"–", "-"}

// ParseDays turns a day count that may arrive as a number or a range string
// into an int. Ranges yield their lower bound. Zero, nil and anything
// unparsable yield def.
func ParseDays(v any, def int) int {
	switch t := v.(type) {
	case nil:
		return def
	case string:
		s := t
		for _, sep := range rangeSeparators {
			if i := strings.Index(s, sep); i > 0 {
				s = s[:i]
			}
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	case bool:
		return def
	}
	f, ok := toFloat(v)
	if !ok || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(f)
}

// toFloat accepts any JSON-decoded number, including numeric strings.
// NaN and infinities are rejected.
func toFloat(v any) (float64, bool) {
	f, ok := anyFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func anyFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func floatOr(m map[string]any, key string, def float64) float64 {
	if f, ok := toFloat(m[key]); ok {
		return f
	}
	return def
}

func intOr(m map[string]any, key string, def int) int {
	if f, ok := toFloat(m[key]); ok {
		return int(f)
	}
	return def
}

func stringOr(m map[string]any, key, def string) string {
	switch t := m[key].(type) {
	case nil:
		return def
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func boolOr(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

func mapOr(m map[string]any, key string) map[string]any {
	if sub, ok := m[key].(map[string]any); ok && sub != nil {
		return sub
	}
	return map[string]any{}
}

func listOr(m map[string]any, key string) ([]any, bool) {
	l, ok := m[key].([]any)
	return l, ok
}

func listOrEmpty(m map[string]any, key string) []any {
	if l, ok := listOr(m, key); ok && l != nil {
		return l
	}
	return []any{}
}
