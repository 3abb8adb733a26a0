package condition

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Evaluate reports whether c holds for values. It never panics: missing
// paths resolve to Undefined and simply fail equality checks, and Unknown
// nodes hold.
func Evaluate(values map[string]any, c Condition) bool {
	switch typed := c.(type) {
	case nil:
		return true
	case FieldEquals:
		return StrictEqual(Resolve(values, typed.Field), typed.Equals)
	case FieldNotEquals:
		return !StrictEqual(Resolve(values, typed.Field), typed.NotEquals)
	case FieldIn:
		got := Resolve(values, typed.Field)
		for _, candidate := range typed.In {
			if StrictEqual(got, candidate) {
				return true
			}
		}
		return false
	case And:
		for _, term := range typed.Terms {
			if !Evaluate(values, term) {
				return false
			}
		}
		return true
	case Or:
		for _, term := range typed.Terms {
			if Evaluate(values, term) {
				return true
			}
		}
		return false
	default:
		// Unknown and anything else fails open.
		return true
	}
}

// StrictEqual compares two leaf values without coercion between strings,
// numbers, and booleans. Every Go numeric kind compares as a number. Maps and
// slices never compare equal.
func StrictEqual(a, b any) bool {
	aUndef, bUndef := IsUndefined(a), IsUndefined(b)
	if aUndef || bUndef {
		return aUndef && bUndef
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, ok := number(a); ok {
		bn, ok := number(b)
		return ok && an == bn
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// IsNumber reports whether v is any Go numeric kind (or a json.Number).
func IsNumber(v any) bool {
	_, ok := number(v)
	return ok
}

// Number returns v as float64 when it is numeric.
func Number(v any) (float64, bool) {
	return number(v)
}

// Resolve returns the value stored at path, or Undefined when any segment is
// missing.
func Resolve(values map[string]any, path string) any {
	v, ok := Lookup(values, path)
	if !ok {
		return Undefined
	}
	return v
}

// Lookup resolves a dotted path. Exact keys win over traversal so flattened
// maps such as {"address.city": "Pune"} resolve as expected. Traversal
// descends map[string]any, map[string]string, and []any (numeric segments).
func Lookup(values map[string]any, path string) (any, bool) {
	if values == nil || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}
