package visibility

import (
	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Resolve computes the visible sections, fields, and options of step.
// A hidden section short-circuits: its fields are never evaluated.
func Resolve(step schema.StepConfig, values map[string]any) Resolution {
	res := Resolution{StepID: step.ID, Title: step.Title}
	for _, section := range step.Sections {
		if !section.VisibleWhen.Holds(values) {
			continue
		}
		resolved := Section{ID: section.ID, Title: section.Title}
		for _, field := range section.Fields {
			if !field.VisibleWhen.Holds(values) {
				continue
			}
			resolved.Fields = append(resolved.Fields, resolveField(field, values))
		}
		res.sections = append(res.sections, resolved)
	}
	return res
}

// ResolveWizard resolves every step of w in order.
func ResolveWizard(w *schema.Wizard, values map[string]any) []Resolution {
	if w == nil {
		return nil
	}
	out := make([]Resolution, 0, len(w.Steps))
	for _, step := range w.Steps {
		out = append(out, Resolve(step, values))
	}
	return out
}

func resolveField(field schema.FieldConfig, values map[string]any) Field {
	out := Field{
		Path:     field.ID,
		Config:   field,
		Required: field.Required || (!field.RequiredWhen.IsZero() && field.RequiredWhen.Holds(values)),
		Disabled: !field.DisabledIf.IsZero() && field.DisabledIf.Holds(values),
	}
	if !field.Type.IsChoice() {
		return out
	}
	out.Options = make([]Option, 0, len(field.Options))
	for _, option := range field.Options {
		if !option.VisibleWhen.Holds(values) {
			continue
		}
		out.Options = append(out.Options, Option{
			Value:    option.Value,
			Label:    option.Label,
			Disabled: !option.DisabledIf.IsZero() && option.DisabledIf.Holds(values),
		})
	}
	return out
}

func optionEqual(a, b any) bool {
	return condition.StrictEqual(a, b)
}
