package condition

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestRuleUnmarshalJSONVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want Condition
	}{
		{name: "null", raw: `null`, want: nil},
		{name: "equals", raw: `{"field":"propertyUsage","equals":"pg"}`, want: FieldEquals{Field: "propertyUsage", Equals: "pg"}},
		{name: "equals null", raw: `{"field":"a","equals":null}`, want: FieldEquals{Field: "a", Equals: nil}},
		{name: "notEquals", raw: `{"field":"bhk","notEquals":2}`, want: FieldNotEquals{Field: "bhk", NotEquals: 2.0}},
		{name: "in", raw: `{"field":"kind","in":["a","b"]}`, want: FieldIn{Field: "kind", In: []any{"a", "b"}}},
		{
			name: "and/or",
			raw:  `{"and":[{"field":"a","equals":1},{"or":[]}]}`,
			want: And{Terms: []Condition{FieldEquals{Field: "a", Equals: 1.0}, Or{Terms: []Condition{}}}},
		},
		{name: "string rule", raw: `"a == 'x'"`, want: FieldEquals{Field: "a", Equals: "x"}},
		{name: "unknown operator", raw: `{"field":"a","gt":1}`, want: Unknown{Raw: map[string]any{"field": "a", "gt": 1.0}}},
		{name: "unknown scalar", raw: `true`, want: Unknown{Raw: true}},
		{name: "and not list", raw: `{"and":{"field":"a"}}`, want: Unknown{Raw: map[string]any{"and": map[string]any{"field": "a"}}}},
	}

	for _, tc := range cases {
		var rule Rule
		if err := json.Unmarshal([]byte(tc.raw), &rule); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if diff := cmp.Diff(tc.want, rule.Condition); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestRuleUnmarshalJSONSurfacesRuleSyntaxErrors(t *testing.T) {
	t.Parallel()

	var rule Rule
	if err := json.Unmarshal([]byte(`"a = 1"`), &rule); err == nil {
		t.Fatalf("expected syntax error")
	}
}

func TestRuleUnmarshalYAML(t *testing.T) {
	t.Parallel()

	var doc struct {
		VisibleWhen Rule `yaml:"visibleWhen"`
		RequiredIf  Rule `yaml:"requiredIf"`
	}
	src := `
visibleWhen:
  or:
    - field: propertyUsage
      equals: pg
    - field: bhk
      in: [1, 2]
requiredIf: 'listing.kind != "rent"'
`
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Or{Terms: []Condition{
		FieldEquals{Field: "propertyUsage", Equals: "pg"},
		FieldIn{Field: "bhk", In: []any{1, 2}},
	}}
	if diff := cmp.Diff(want, doc.VisibleWhen.Condition); diff != "" {
		t.Fatalf("visibleWhen mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(FieldNotEquals{Field: "listing.kind", NotEquals: "rent"}, doc.RequiredIf.Condition); diff != "" {
		t.Fatalf("requiredIf mismatch (-want +got):\n%s", diff)
	}
	if !doc.VisibleWhen.Holds(map[string]any{"bhk": 2.0}) {
		t.Fatalf("expected yaml int literal to match float value")
	}
}

func TestRuleMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	rule := When(And{Terms: []Condition{
		FieldEquals{Field: "a", Equals: "x"},
		FieldIn{Field: "b", In: []any{"y"}},
	}})
	data, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Rule
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(rule.Condition, decoded.Condition); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !(Rule{}).IsZero() {
		t.Fatalf("expected zero rule to report IsZero")
	}
}

func TestCheckReportsUnknownNodes(t *testing.T) {
	t.Parallel()

	c := And{Terms: []Condition{
		FieldEquals{Field: "a", Equals: 1},
		Or{Terms: []Condition{Unknown{Raw: "?"}, FieldIn{Field: ""}}},
	}}
	issues := Check(c)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	if issues[0].Path != "and[1].or[0]" {
		t.Fatalf("unexpected path %q", issues[0].Path)
	}
	if issues[1].Path != "and[1].or[1]" || issues[1].Message != "field is required" {
		t.Fatalf("unexpected issue %v", issues[1])
	}
	if got := Check(FieldEquals{Field: "a"}); len(got) != 0 {
		t.Fatalf("expected no issues, got %v", got)
	}
}
