package condition

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	keyField     = "field"
	keyEquals    = "equals"
	keyNotEquals = "notEquals"
	keyIn        = "in"
	keyAnd       = "and"
	keyOr        = "or"
)

// FromValue converts a decoded JSON/YAML value into a Condition. Strings are
// parsed with Parse; objects are matched against the variant shapes. Objects
// that match nothing become Unknown. Only string syntax errors are returned.
func FromValue(raw any) (Condition, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return Parse(typed)
	case map[string]any:
		return fromMap(typed)
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for k, v := range typed {
			key, ok := k.(string)
			if !ok {
				return Unknown{Raw: raw}, nil
			}
			converted[key] = v
		}
		return fromMap(converted)
	default:
		return Unknown{Raw: raw}, nil
	}
}

func fromMap(m map[string]any) (Condition, error) {
	if terms, ok := m[keyAnd]; ok {
		list, err := termsFrom(terms)
		if err != nil {
			return nil, err
		}
		if list == nil {
			return Unknown{Raw: m}, nil
		}
		return And{Terms: list}, nil
	}
	if terms, ok := m[keyOr]; ok {
		list, err := termsFrom(terms)
		if err != nil {
			return nil, err
		}
		if list == nil {
			return Unknown{Raw: m}, nil
		}
		return Or{Terms: list}, nil
	}

	field, ok := m[keyField].(string)
	if !ok || field == "" {
		return Unknown{Raw: m}, nil
	}
	if v, ok := m[keyEquals]; ok {
		return FieldEquals{Field: field, Equals: v}, nil
	}
	if v, ok := m[keyNotEquals]; ok {
		return FieldNotEquals{Field: field, NotEquals: v}, nil
	}
	if v, ok := m[keyIn]; ok {
		set, ok := v.([]any)
		if !ok {
			return Unknown{Raw: m}, nil
		}
		return FieldIn{Field: field, In: append([]any{}, set...)}, nil
	}
	return Unknown{Raw: m}, nil
}

// termsFrom returns nil (no error) when raw is not a list.
func termsFrom(raw any) ([]Condition, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]Condition, 0, len(items))
	for idx, item := range items {
		term, err := FromValue(item)
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", idx, err)
		}
		if term == nil {
			term = Unknown{Raw: item}
		}
		out = append(out, term)
	}
	return out, nil
}

// ToValue converts c back into its object form. Unknown returns its raw
// payload unchanged.
func ToValue(c Condition) any {
	switch typed := c.(type) {
	case nil:
		return nil
	case FieldEquals:
		return map[string]any{keyField: typed.Field, keyEquals: typed.Equals}
	case FieldNotEquals:
		return map[string]any{keyField: typed.Field, keyNotEquals: typed.NotEquals}
	case FieldIn:
		set := typed.In
		if set == nil {
			set = []any{}
		}
		return map[string]any{keyField: typed.Field, keyIn: set}
	case And:
		return map[string]any{keyAnd: termsTo(typed.Terms)}
	case Or:
		return map[string]any{keyOr: termsTo(typed.Terms)}
	case Unknown:
		return typed.Raw
	default:
		return nil
	}
}

func termsTo(terms []Condition) []any {
	out := make([]any, 0, len(terms))
	for _, term := range terms {
		out = append(out, ToValue(term))
	}
	return out
}

// Rule wraps a Condition so it can live inside JSON/YAML documents. The zero
// value carries no condition and always holds.
type Rule struct {
	Condition Condition
}

// When builds a Rule from a condition.
func When(c Condition) Rule {
	return Rule{Condition: c}
}

// IsZero reports whether the rule carries no condition.
func (r Rule) IsZero() bool {
	return r.Condition == nil
}

// Holds evaluates the wrapped condition against values.
func (r Rule) Holds(values map[string]any) bool {
	return Evaluate(values, r.Condition)
}

// UnmarshalJSON decodes either the object form or a rule string.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("condition: decode json: %w", err)
	}
	c, err := FromValue(raw)
	if err != nil {
		return err
	}
	r.Condition = c
	return nil
}

// MarshalJSON encodes the object form.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToValue(r.Condition))
}

// UnmarshalYAML decodes either the object form or a rule string.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("condition: decode yaml: %w", err)
	}
	c, err := FromValue(raw)
	if err != nil {
		return fmt.Errorf("condition: line %d: %w", node.Line, err)
	}
	r.Condition = c
	return nil
}

// MarshalYAML encodes the object form.
func (r Rule) MarshalYAML() (any, error) {
	return ToValue(r.Condition), nil
}
