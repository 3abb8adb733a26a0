package condition

import (
	"fmt"
	"strings"
)

// Issue locates a malformed node inside a condition tree.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Check walks c and reports Unknown nodes and variants with an empty field.
// Evaluate tolerates both; Check exists for callers that want to reject them
// when a schema is loaded.
func Check(c Condition) []Issue {
	var issues []Issue
	check(c, "", &issues)
	return issues
}

func check(c Condition, path string, issues *[]Issue) {
	switch typed := c.(type) {
	case nil:
	case FieldEquals:
		checkField(typed.Field, path, issues)
	case FieldNotEquals:
		checkField(typed.Field, path, issues)
	case FieldIn:
		checkField(typed.Field, path, issues)
	case And:
		for idx, term := range typed.Terms {
			check(term, join(path, fmt.Sprintf("and[%d]", idx)), issues)
		}
	case Or:
		for idx, term := range typed.Terms {
			check(term, join(path, fmt.Sprintf("or[%d]", idx)), issues)
		}
	case Unknown:
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf("unrecognised condition %v", typed.Raw)})
	default:
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf("unsupported condition type %T", c)})
	}
}

func checkField(field, path string, issues *[]Issue) {
	if strings.TrimSpace(field) == "" {
		*issues = append(*issues, Issue{Path: path, Message: "field is required"})
	}
}

func join(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}
