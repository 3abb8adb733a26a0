package validation_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

func codes(result validation.Result) map[string]validation.Code {
	out := make(map[string]validation.Code, len(result.Errors))
	for _, err := range result.Errors {
		out[err.Path] = err.Code
	}
	return out
}

func TestValidateFieldsRequiresVisibleRequiredValues(t *testing.T) {
	t.Parallel()

	wizard := testsupport.ListingWizard(t)
	res := visibility.Resolve(testsupport.MustStep(t, wizard, "location"), nil)

	values := map[string]any{"address": map[string]any{"city": "  "}}
	result := validation.ValidateFields(values, res.Fields(), res.RequiredPaths())
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	testsupport.AssertEqual(t, map[string]validation.Code{
		"address.city":     validation.CodeRequired,
		"address.locality": validation.CodeRequired,
	}, codes(result))

	values = map[string]any{"address.city": "Pune", "address": map[string]any{"locality": "Baner"}}
	result = validation.ValidateFields(values, res.Fields(), res.RequiredPaths())
	if !result.Valid {
		t.Fatalf("expected valid result, got %+v", result.Errors)
	}
}

func TestValidateFieldsTypeAndRangeChecks(t *testing.T) {
	t.Parallel()

	fields := []visibility.Field{
		{Path: "bhk", Config: schema.FieldConfig{ID: "bhk", Type: schema.FieldCounter, Min: schema.Float(1), Max: schema.Float(10), Step: schema.Float(1)}},
		{Path: "area", Config: schema.FieldConfig{ID: "area", Type: schema.FieldNumber, Min: schema.Float(50)}},
		{Path: "rent", Config: schema.FieldConfig{ID: "rent", Type: schema.FieldNumber, Max: schema.Float(100)}},
		{Path: "deposit", Config: schema.FieldConfig{ID: "deposit", Type: schema.FieldNumber, Step: schema.Float(500)}},
		{Path: "furnished", Config: schema.FieldConfig{ID: "furnished", Type: schema.FieldToggle}},
		{Path: "note", Config: schema.FieldConfig{ID: "note", Type: schema.FieldText}},
		{Path: "baths", Config: schema.FieldConfig{ID: "baths", Type: schema.FieldCounter}},
	}
	values := map[string]any{
		"bhk":       2.5,
		"area":      "120",
		"rent":      int64(150),
		"deposit":   1250,
		"furnished": "yes",
		"note":      42,
		"baths":     3,
	}

	result := validation.ValidateFields(values, fields, nil)
	testsupport.AssertEqual(t, map[string]validation.Code{
		"bhk":       validation.CodeType,
		"area":      validation.CodeType,
		"rent":      validation.CodeMax,
		"deposit":   validation.CodeStep,
		"furnished": validation.CodeType,
		"note":      validation.CodeType,
	}, codes(result))
}

func TestValidateFieldsChecksOptions(t *testing.T) {
	t.Parallel()

	wizard := testsupport.ListingWizard(t)
	values := map[string]any{
		"propertyUsage": "pg",
		"foodIncluded":  false,
		"builtUpArea":   400,
		"bhk":           2,
		"furnishing":    "palatial",
		"amenities":     []any{"lift", "meals"},
	}
	res := visibility.Resolve(testsupport.MustStep(t, wizard, "details"), values)

	result := validation.ValidateFields(values, res.Fields(), nil)
	testsupport.AssertEqual(t, map[string]validation.Code{
		"furnishing": validation.CodeOption,
		"amenities":  validation.CodeDisabled,
	}, codes(result))

	values["foodIncluded"] = true
	values["furnishing"] = "semi"
	res = visibility.Resolve(testsupport.MustStep(t, wizard, "details"), values)
	if result := validation.ValidateFields(values, res.Fields(), nil); !result.Valid {
		t.Fatalf("expected valid result, got %+v", result.Errors)
	}
}

func TestValidateFieldsDisabledAndFilteredPaths(t *testing.T) {
	t.Parallel()

	fields := []visibility.Field{
		{Path: "a", Required: true, Disabled: true, Config: schema.FieldConfig{Type: schema.FieldText}},
		{Path: "b", Required: true, Config: schema.FieldConfig{Type: schema.FieldText}},
		{Path: "c", Required: true, Config: schema.FieldConfig{Type: schema.FieldCheckbox, Label: "Terms"}},
		{Path: "d", Disabled: true, Config: schema.FieldConfig{Type: schema.FieldNumber, Min: schema.Float(10)}},
	}

	result := validation.ValidateFields(map[string]any{"c": false, "d": "lots"}, fields, []string{"a", "c", "d"})
	testsupport.AssertEqual(t, []validation.FieldError{
		{Path: "a", Code: validation.CodeRequired, Message: "a is required"},
		{Path: "c", Code: validation.CodeRequired, Message: "Terms is required"},
	}, result.Errors)

	prefilled := validation.ValidateFields(map[string]any{"a": "locked", "c": true}, fields, []string{"a", "c"})
	if !prefilled.Valid {
		t.Fatalf("disabled field with a value should pass, got %+v", prefilled.Errors)
	}

	if empty := validation.ValidateFields(nil, fields, []string{}); !empty.Valid {
		t.Fatalf("empty path filter should validate nothing")
	}
}

func TestResultHelpers(t *testing.T) {
	t.Parallel()

	a := validation.Result{Errors: []validation.FieldError{{Path: "x", Code: validation.CodeRequired}}}
	b := validation.Result{Errors: []validation.FieldError{{Path: "y", Code: validation.CodeType}, {Path: "x", Code: validation.CodeMin}}}
	merged := a.Merge(b)
	if merged.Valid {
		t.Fatalf("merged result should be invalid")
	}
	testsupport.AssertEqual(t, []string{"x", "y"}, merged.Paths())
	if len(merged.For("x")) != 2 {
		t.Fatalf("expected two errors for x")
	}
	if !validation.OK().Merge(validation.OK()).Valid {
		t.Fatalf("merging passing results should pass")
	}
}

func TestValidatorFunc(t *testing.T) {
	t.Parallel()

	var v validation.Validator = validation.ValidatorFunc(func(_ context.Context, values map[string]any, fields []visibility.Field) (validation.Result, error) {
		return validation.ValidateFields(values, fields, nil), nil
	})
	result, err := v.Validate(context.Background(), nil, []visibility.Field{{Path: "a", Required: true, Config: schema.FieldConfig{Type: schema.FieldText}}})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected missing required value to fail")
	}
}
