package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-formflow/pkg/condition"
)

// Len returns the number of steps.
func (w *Wizard) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Steps)
}

// Step returns the step at idx.
func (w *Wizard) Step(idx int) (StepConfig, bool) {
	if w == nil || idx < 0 || idx >= len(w.Steps) {
		return StepConfig{}, false
	}
	return w.Steps[idx], true
}

// StepIndex returns the index of the step with the given id, or -1.
func (w *Wizard) StepIndex(id string) int {
	if w == nil {
		return -1
	}
	for idx, step := range w.Steps {
		if step.ID == id {
			return idx
		}
	}
	return -1
}

// Fields returns every field across all steps in declaration order.
func (w *Wizard) Fields() []FieldConfig {
	if w == nil {
		return nil
	}
	var out []FieldConfig
	for _, step := range w.Steps {
		for _, section := range step.Sections {
			out = append(out, section.Fields...)
		}
	}
	return out
}

// Field looks up a field by path.
func (w *Wizard) Field(path string) (FieldConfig, bool) {
	for _, field := range w.Fields() {
		if field.ID == path {
			return field, true
		}
	}
	return FieldConfig{}, false
}

// Validate checks the structural invariants the resolver and the wizard
// controller rely on. All problems are reported together.
func (w *Wizard) Validate() error {
	if w == nil {
		return errors.New("schema: wizard is nil")
	}
	label := w.label()

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("schema: wizard %s: "+format, append([]any{label}, args...)...))
	}

	if strings.TrimSpace(w.ID) == "" {
		fail("id is required")
	}
	if len(w.Steps) == 0 {
		fail("at least one step is required")
	}

	stepIDs := make(map[string]struct{}, len(w.Steps))
	sectionIDs := make(map[string]struct{})
	fieldIDs := make(map[string]struct{})

	for stepIdx, step := range w.Steps {
		if strings.TrimSpace(step.ID) == "" {
			fail("step %d has no id", stepIdx)
		} else if _, dup := stepIDs[step.ID]; dup {
			fail("duplicate step id %q", step.ID)
		} else {
			stepIDs[step.ID] = struct{}{}
		}

		for sectionIdx, section := range step.Sections {
			if strings.TrimSpace(section.ID) == "" {
				fail("step %q section %d has no id", step.ID, sectionIdx)
			} else if _, dup := sectionIDs[section.ID]; dup {
				fail("duplicate section id %q", section.ID)
			} else {
				sectionIDs[section.ID] = struct{}{}
			}

			for fieldIdx, field := range section.Fields {
				where := fmt.Sprintf("section %q field %d", section.ID, fieldIdx)
				if strings.TrimSpace(field.ID) == "" {
					fail("%s has no id", where)
					continue
				}
				where = fmt.Sprintf("field %q", field.ID)
				if _, dup := fieldIDs[field.ID]; dup {
					fail("duplicate %s", where)
				}
				fieldIDs[field.ID] = struct{}{}

				if !field.Type.Valid() {
					fail("%s has unsupported type %q", where, field.Type)
					continue
				}
				if field.Type.IsChoice() && len(field.Options) == 0 {
					fail("%s of type %q requires options", where, field.Type)
				}
				if !field.Type.IsChoice() && len(field.Options) > 0 {
					fail("%s of type %q does not accept options", where, field.Type)
				}
				if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
					fail("%s has min %v greater than max %v", where, *field.Min, *field.Max)
				}
				if field.Step != nil && *field.Step <= 0 {
					fail("%s step must be positive", where)
				}
				for optIdx, option := range field.Options {
					if slices.ContainsFunc(field.Options[:optIdx], func(prev Option) bool {
						return condition.StrictEqual(prev.Value, option.Value)
					}) {
						fail("%s option %d duplicates value %v", where, optIdx, option.Value)
					}
				}
			}
		}
	}

	return errors.Join(errs...)
}

// CheckConditions reports unrecognised condition shapes and references to
// fields the wizard does not declare. It is used by strict loading; the
// evaluator itself tolerates both.
func (w *Wizard) CheckConditions() error {
	if w == nil {
		return errors.New("schema: wizard is nil")
	}
	known := make(map[string]struct{})
	for _, field := range w.Fields() {
		known[field.ID] = struct{}{}
	}

	var errs []error
	inspect := func(where string, rule condition.Rule) {
		for _, issue := range condition.Check(rule.Condition) {
			errs = append(errs, fmt.Errorf("schema: wizard %s: %s: %s", w.label(), where, issue))
		}
		for _, ref := range condition.Fields(rule.Condition) {
			if _, ok := known[ref]; !ok {
				errs = append(errs, fmt.Errorf("schema: wizard %s: %s references unknown field %q", w.label(), where, ref))
			}
		}
	}

	for _, step := range w.Steps {
		for _, section := range step.Sections {
			inspect(fmt.Sprintf("section %q visibleWhen", section.ID), section.VisibleWhen)
			for _, field := range section.Fields {
				inspect(fmt.Sprintf("field %q visibleWhen", field.ID), field.VisibleWhen)
				inspect(fmt.Sprintf("field %q requiredWhen", field.ID), field.RequiredWhen)
				inspect(fmt.Sprintf("field %q disabledIf", field.ID), field.DisabledIf)
				for idx, option := range field.Options {
					inspect(fmt.Sprintf("field %q option %d visibleWhen", field.ID, idx), option.VisibleWhen)
					inspect(fmt.Sprintf("field %q option %d disabledIf", field.ID, idx), option.DisabledIf)
				}
			}
		}
	}
	return errors.Join(errs...)
}

func (w *Wizard) label() string {
	if w.Source != "" {
		return fmt.Sprintf("%q (%s)", w.ID, w.Source)
	}
	return fmt.Sprintf("%q", w.ID)
}
