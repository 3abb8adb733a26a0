package schema

import (
	"strings"
	"testing"
)

func validWizard() *Wizard {
	return &Wizard{
		ID: "w",
		Steps: []StepConfig{{
			ID: "s1",
			Sections: []SectionConfig{{
				ID: "main",
				Fields: []FieldConfig{
					{ID: "usage", Type: FieldChipRadio, Options: []Option{{Value: "a"}, {Value: "b"}}},
					{ID: "rooms", Type: FieldCounter, Min: Float(1), Max: Float(5), Step: Float(1)},
				},
			}},
		}},
	}
}

func TestWizardValidateAcceptsWellFormedWizard(t *testing.T) {
	t.Parallel()

	if err := validWizard().Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestWizardValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()

	w := validWizard()
	w.Steps = append(w.Steps, StepConfig{
		ID: "s1",
		Sections: []SectionConfig{{
			ID: "main",
			Fields: []FieldConfig{
				{ID: "usage", Type: FieldText},
				{ID: "kind", Type: FieldSelect},
				{ID: "size", Type: "slider"},
				{ID: "price", Type: FieldNumber, Min: Float(10), Max: Float(1)},
				{ID: "flag", Type: FieldToggle, Options: []Option{{Value: true}}},
				{ID: "dup", Type: FieldRadio, Options: []Option{{Value: "x"}, {Value: "x"}}},
				{ID: "steps", Type: FieldCounter, Step: Float(0)},
			},
		}},
	})

	err := w.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		`duplicate step id "s1"`,
		`duplicate section id "main"`,
		`duplicate field "usage"`,
		`field "kind" of type "select" requires options`,
		`field "size" has unsupported type "slider"`,
		`field "price" has min 10 greater than max 1`,
		`field "flag" of type "toggle" does not accept options`,
		`field "dup" option 1 duplicates value x`,
		`field "steps" step must be positive`,
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in:\n%s", want, msg)
		}
	}
}

func TestWizardValidateTreatsNumericOptionsAsEqual(t *testing.T) {
	t.Parallel()

	w := validWizard()
	w.Steps[0].Sections[0].Fields = append(w.Steps[0].Sections[0].Fields, FieldConfig{
		ID:      "floors",
		Type:    FieldSelect,
		Options: []Option{{Value: 1}, {Value: 2}, {Value: 1.0}, {Value: "1"}},
	})

	err := w.Validate()
	if err == nil {
		t.Fatalf("expected duplicate option error")
	}
	msg := err.Error()
	if !strings.Contains(msg, `field "floors" option 2 duplicates value 1`) {
		t.Fatalf("expected int/float duplicate to be reported, got:\n%s", msg)
	}
	if strings.Contains(msg, "option 3") {
		t.Fatalf("string option must not collide with numeric one, got:\n%s", msg)
	}
}

func TestFieldTypeClassification(t *testing.T) {
	t.Parallel()

	if !FieldChipMulti.IsChoice() || !FieldChipMulti.IsMulti() {
		t.Fatalf("chip-multi should be a multi choice")
	}
	if FieldText.IsChoice() || !FieldText.IsText() {
		t.Fatalf("text classification wrong")
	}
	if !FieldCounter.IsNumeric() || !FieldCheckbox.IsBoolean() {
		t.Fatalf("numeric/boolean classification wrong")
	}
	if FieldType("slider").Valid() {
		t.Fatalf("unexpected valid type")
	}
}

func TestWizardLookups(t *testing.T) {
	t.Parallel()

	w := validWizard()
	if w.StepIndex("s1") != 0 || w.StepIndex("missing") != -1 {
		t.Fatalf("unexpected step index")
	}
	if _, ok := w.Step(3); ok {
		t.Fatalf("expected out of range step")
	}
	if len(w.Fields()) != 2 {
		t.Fatalf("expected 2 fields")
	}
	var nilWizard *Wizard
	if nilWizard.Len() != 0 {
		t.Fatalf("nil wizard should have no steps")
	}
}
