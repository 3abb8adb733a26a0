// Package condition models the declarative predicates that gate visibility,
// requiredness, and disabled state across a wizard schema.
//
// A Condition is a closed set of variants: FieldEquals, FieldNotEquals,
// FieldIn, And, Or, and Unknown. A nil Condition always holds. Unknown carries
// a decoded shape that matched no variant; it evaluates to true so a schema
// mistake never hides an input from the user.
package condition

// Condition is implemented by the variant types in this package only.
type Condition interface {
	condition()
}

// FieldEquals holds when the value at Field is strictly equal to Equals.
type FieldEquals struct {
	Field  string
	Equals any
}

// FieldNotEquals holds when the value at Field is not strictly equal to
// NotEquals.
type FieldNotEquals struct {
	Field     string
	NotEquals any
}

// FieldIn holds when the value at Field strictly equals one of In.
type FieldIn struct {
	Field string
	In    []any
}

// And holds when every term holds. An empty And holds.
type And struct {
	Terms []Condition
}

// Or holds when at least one term holds. An empty Or does not hold.
type Or struct {
	Terms []Condition
}

// Unknown wraps a shape the decoder could not map onto a variant.
type Unknown struct {
	Raw any
}

func (FieldEquals) condition()    {}
func (FieldNotEquals) condition() {}
func (FieldIn) condition()        {}
func (And) condition()            {}
func (Or) condition()             {}
func (Unknown) condition()        {}

// UndefinedValue marks a path that does not resolve. It is distinct from nil,
// which represents an explicit null.
type UndefinedValue struct{}

// Undefined is the value produced by Resolve for missing paths.
var Undefined = UndefinedValue{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(UndefinedValue)
	return ok
}

// Fields returns the field paths referenced by c in declaration order,
// without duplicates.
func Fields(c Condition) []string {
	var out []string
	seen := make(map[string]struct{})
	var walk func(Condition)
	walk = func(node Condition) {
		var field string
		switch typed := node.(type) {
		case FieldEquals:
			field = typed.Field
		case FieldNotEquals:
			field = typed.Field
		case FieldIn:
			field = typed.Field
		case And:
			for _, term := range typed.Terms {
				walk(term)
			}
			return
		case Or:
			for _, term := range typed.Terms {
				walk(term)
			}
			return
		default:
			return
		}
		if _, ok := seen[field]; ok {
			return
		}
		seen[field] = struct{}{}
		out = append(out, field)
	}
	walk(c)
	return out
}
