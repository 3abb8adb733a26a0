// Package validation checks form values against resolved field rules.
// Failures are returned as values; nothing here returns an error or panics.
package validation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Code classifies a field error.
type Code string

const (
	CodeRequired Code = "required"
	CodeType     Code = "type"
	CodeMin      Code = "min"
	CodeMax      Code = "max"
	CodeStep     Code = "step"
	CodeOption   Code = "option"
	CodeDisabled Code = "disabled"
)

// FieldError is a single failure attached to a field path.
type FieldError struct {
	Path    string `json:"path"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Path + ": " + e.Message
}

// Result aggregates the outcome of validating a set of fields.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// OK returns a passing result.
func OK() Result {
	return Result{Valid: true}
}

// For returns the errors attached to path.
func (r Result) For(path string) []FieldError {
	var out []FieldError
	for _, err := range r.Errors {
		if err.Path == path {
			out = append(out, err)
		}
	}
	return out
}

// Paths lists the failing paths in the order they were reported.
func (r Result) Paths() []string {
	seen := make(map[string]struct{}, len(r.Errors))
	var out []string
	for _, err := range r.Errors {
		if _, ok := seen[err.Path]; ok {
			continue
		}
		seen[err.Path] = struct{}{}
		out = append(out, err.Path)
	}
	return out
}

// Merge folds other into r.
func (r Result) Merge(other Result) Result {
	out := Result{Errors: append(append([]FieldError(nil), r.Errors...), other.Errors...)}
	out.Valid = len(out.Errors) == 0
	return out
}

// Validator checks resolved fields. Implementations report failures through
// Result and reserve errors for infrastructure problems.
type Validator interface {
	Validate(ctx context.Context, values map[string]any, fields []visibility.Field) (Result, error)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, values map[string]any, fields []visibility.Field) (Result, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, values map[string]any, fields []visibility.Field) (Result, error) {
	return f(ctx, values, fields)
}

// ValidateFields checks the given fields against values. When paths is
// non-nil only fields whose path is listed are checked. Disabled fields only
// get the required check. Empty, non-required fields pass without type checks.
func ValidateFields(values map[string]any, fields []visibility.Field, paths []string) Result {
	var filter map[string]struct{}
	if paths != nil {
		filter = make(map[string]struct{}, len(paths))
		for _, path := range paths {
			filter[path] = struct{}{}
		}
	}

	result := OK()
	for _, field := range fields {
		if filter != nil {
			if _, ok := filter[field.Path]; !ok {
				continue
			}
		}
		value, _ := condition.Lookup(values, field.Path)
		if field.Disabled {
			if field.Required && IsEmpty(field.Config.Type, value) {
				result.Errors = append(result.Errors, requiredError(field))
			}
			continue
		}
		if err, failed := checkField(field, value); failed {
			result.Errors = append(result.Errors, err)
		}
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func requiredError(field visibility.Field) FieldError {
	label := field.Config.Label
	if label == "" {
		label = field.Path
	}
	return FieldError{Path: field.Path, Code: CodeRequired, Message: label + " is required"}
}

func checkField(field visibility.Field, value any) (FieldError, bool) {
	cfg := field.Config
	label := cfg.Label
	if label == "" {
		label = field.Path
	}
	fail := func(code Code, format string, args ...any) (FieldError, bool) {
		return FieldError{Path: field.Path, Code: code, Message: fmt.Sprintf(format, args...)}, true
	}

	if IsEmpty(cfg.Type, value) {
		if field.Required {
			return requiredError(field), true
		}
		return FieldError{}, false
	}

	switch {
	case cfg.Type.IsNumeric():
		n, ok := condition.Number(value)
		if !ok {
			return fail(CodeType, "%s must be a number", label)
		}
		if cfg.Type == schema.FieldCounter && n != math.Trunc(n) {
			return fail(CodeType, "%s must be a whole number", label)
		}
		if cfg.Min != nil && n < *cfg.Min {
			return fail(CodeMin, "%s must be at least %v", label, *cfg.Min)
		}
		if cfg.Max != nil && n > *cfg.Max {
			return fail(CodeMax, "%s must be at most %v", label, *cfg.Max)
		}
		if cfg.Step != nil && *cfg.Step > 0 {
			base := 0.0
			if cfg.Min != nil {
				base = *cfg.Min
			}
			q := (n - base) / *cfg.Step
			if math.Abs(q-math.Round(q)) > 1e-9 {
				return fail(CodeStep, "%s must be in steps of %v", label, *cfg.Step)
			}
		}
	case cfg.Type.IsBoolean():
		if _, ok := value.(bool); !ok {
			return fail(CodeType, "%s must be true or false", label)
		}
	case cfg.Type.IsText():
		if _, ok := value.(string); !ok {
			return fail(CodeType, "%s must be text", label)
		}
	case cfg.Type.IsMulti():
		items, ok := listOf(value)
		if !ok {
			return fail(CodeType, "%s must be a list", label)
		}
		for _, item := range items {
			if err, failed := checkOption(field, label, item); failed {
				return err, true
			}
		}
	case cfg.Type.IsChoice():
		return checkOption(field, label, value)
	}
	return FieldError{}, false
}

func checkOption(field visibility.Field, label string, value any) (FieldError, bool) {
	for _, option := range field.Options {
		if !condition.StrictEqual(option.Value, value) {
			continue
		}
		if option.Disabled {
			return FieldError{
				Path:    field.Path,
				Code:    CodeDisabled,
				Message: fmt.Sprintf("%s option %v is not available", label, value),
			}, true
		}
		return FieldError{}, false
	}
	return FieldError{
		Path:    field.Path,
		Code:    CodeOption,
		Message: fmt.Sprintf("%s has no option %v", label, value),
	}, true
}

// IsEmpty reports whether value counts as missing for a field of type t:
// undefined, null, blank text, an empty list, or an unchecked checkbox.
func IsEmpty(t schema.FieldType, value any) bool {
	if condition.IsUndefined(value) || value == nil {
		return true
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed) == ""
	case bool:
		return t == schema.FieldCheckbox && !typed
	}
	if items, ok := listOf(value); ok {
		return len(items) == 0
	}
	return false
}

func listOf(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = v
		}
		return out, true
	default:
		return nil, false
	}
}
