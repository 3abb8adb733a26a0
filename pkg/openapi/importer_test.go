package openapi_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "listings.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestOperationsListsImportableOperations(t *testing.T) {
	t.Parallel()

	ops, err := openapi.Operations(context.Background(), readFixture(t))
	if err != nil {
		t.Fatalf("Operations: %v", err)
	}
	testsupport.AssertEqual(t, []openapi.Operation{
		{ID: "createListing", Method: "POST", Path: "/listings", Summary: "Create listing"},
		{ID: "put:/listings/{id}/price", Method: "PUT", Path: "/listings/{id}/price"},
	}, ops)
}

func TestImportOperationBuildsWizard(t *testing.T) {
	t.Parallel()

	w, err := openapi.ImportOperation(context.Background(), readFixture(t), "createListing", openapi.WithWizardID("listing"))
	if err != nil {
		t.Fatalf("ImportOperation: %v", err)
	}
	if w.ID != "listing" || w.Title != "Create listing" || w.Len() != 1 {
		t.Fatalf("unexpected wizard header %+v", w)
	}

	step := w.Steps[0]
	var sectionIDs []string
	for _, section := range step.Sections {
		sectionIDs = append(sectionIDs, section.ID)
	}
	testsupport.AssertEqual(t, []string{"fields", "address"}, sectionIDs)

	var paths []string
	for _, field := range w.Fields() {
		paths = append(paths, field.ID)
	}
	testsupport.AssertEqual(t, []string{"amenities", "bhk", "description", "furnished", "propertyUsage", "address.city", "address.pincode"}, paths)

	bhk, _ := w.Field("bhk")
	if bhk.Type != schema.FieldNumber || !bhk.Required || bhk.Label != "Bedrooms" {
		t.Fatalf("unexpected bhk %+v", bhk)
	}
	if *bhk.Min != 1 || *bhk.Max != 10 || *bhk.Step != 1 {
		t.Fatalf("unexpected bhk bounds %+v", bhk)
	}

	usage, _ := w.Field("propertyUsage")
	if usage.Type != schema.FieldSelect || !usage.Required || len(usage.Options) != 3 {
		t.Fatalf("unexpected propertyUsage %+v", usage)
	}
	testsupport.AssertEqual(t, schema.Option{Value: "pg", Label: "Pg"}, usage.Options[2])

	amenities, _ := w.Field("amenities")
	if amenities.Type != schema.FieldChipMulti || amenities.Required {
		t.Fatalf("unexpected amenities %+v", amenities)
	}

	furnished, _ := w.Field("furnished")
	if furnished.Type != schema.FieldToggle || furnished.Meta["default"] != false {
		t.Fatalf("unexpected furnished %+v", furnished)
	}

	description, _ := w.Field("description")
	if description.Type != schema.FieldTextarea || description.HelpText != "Free text" {
		t.Fatalf("unexpected description %+v", description)
	}

	city, _ := w.Field("address.city")
	pincode, _ := w.Field("address.pincode")
	if !city.Required || pincode.Required {
		t.Fatalf("nested required flags wrong: city %v pincode %v", city.Required, pincode.Required)
	}
	if _, ok := w.Field("id"); ok {
		t.Fatalf("read-only properties must be skipped")
	}
	if _, ok := w.Field("photos"); ok {
		t.Fatalf("arrays of objects must be skipped")
	}
}

func TestImportOperationErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	raw := readFixture(t)
	cases := map[string]struct {
		raw  []byte
		op   string
		want string
	}{
		"missing id":      {raw: raw, op: " ", want: "operation id is required"},
		"unknown":         {raw: raw, op: "deleteListing", want: `operation "deleteListing" not found`},
		"no request body": {raw: raw, op: "listListings", want: "has no request body schema"},
		"empty":           {raw: nil, op: "createListing", want: "document payload is empty"},
		"no paths":        {raw: []byte(`{"openapi":"3.0.0","info":{"title":"x","version":"1"},"paths":{}}`), op: "x", want: "does not contain any paths"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := openapi.ImportOperation(ctx, tc.raw, tc.op)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestImportOperationAvoidsSectionIDCollisions(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
  "openapi": "3.0.3",
  "info": {"title": "Forms", "version": "1"},
  "paths": {
    "/forms": {
      "post": {
        "operationId": "createForm",
        "requestBody": {"content": {"application/json": {"schema": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string"},
            "fields": {
              "type": "object",
              "properties": {"label": {"type": "string"}}
            }
          }
        }}}},
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`)

	w, err := openapi.ImportOperation(context.Background(), doc, "createForm")
	if err != nil {
		t.Fatalf("ImportOperation: %v", err)
	}
	var sectionIDs []string
	for _, section := range w.Steps[0].Sections {
		sectionIDs = append(sectionIDs, section.ID)
	}
	testsupport.AssertEqual(t, []string{"fields-2", "fields"}, sectionIDs)
	if _, ok := w.Field("fields.label"); !ok {
		t.Fatalf("expected nested field fields.label")
	}
}
