// Package visibility resolves which sections, fields, and options of a
// wizard step are shown for a given snapshot of form values, and whether each
// visible field is required or disabled.
//
// Resolution is a pure function of (step, values): declaration order is kept
// exactly, nothing is cached, and calling it twice on unchanged values yields
// identical results.
package visibility

import (
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Option is a choice option that survived filtering.
type Option struct {
	Value    any
	Label    string
	Disabled bool
}

// Field is a visible field with its effective flags.
type Field struct {
	Path     string
	Config   schema.FieldConfig
	Required bool
	Disabled bool
	Options  []Option
}

// AllowsValue reports whether v matches a visible, enabled option.
func (f Field) AllowsValue(v any) bool {
	for _, option := range f.Options {
		if !option.Disabled && optionEqual(option.Value, v) {
			return true
		}
	}
	return false
}

// Section is a visible section and its visible fields.
type Section struct {
	ID     string
	Title  string
	Fields []Field
}

// Empty reports whether no field of the section is visible.
func (s Section) Empty() bool {
	return len(s.Fields) == 0
}

// Resolution is the outcome of resolving one step.
type Resolution struct {
	StepID   string
	Title    string
	sections []Section
}

// All returns every visible section, including ones whose fields were all
// filtered out.
func (r Resolution) All() []Section {
	return r.sections
}

// Sections returns the visible sections that have at least one visible field.
// This is the list a renderer should draw.
func (r Resolution) Sections() []Section {
	out := make([]Section, 0, len(r.sections))
	for _, section := range r.sections {
		if !section.Empty() {
			out = append(out, section)
		}
	}
	return out
}

// Fields returns every visible field in on-screen order.
func (r Resolution) Fields() []Field {
	var out []Field
	for _, section := range r.sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Field returns the visible field with the given path.
func (r Resolution) Field(path string) (Field, bool) {
	for _, section := range r.sections {
		for _, field := range section.Fields {
			if field.Path == path {
				return field, true
			}
		}
	}
	return Field{}, false
}

// VisiblePaths lists the paths of every visible field.
func (r Resolution) VisiblePaths() []string {
	return r.paths(func(Field) bool { return true })
}

// RequiredPaths lists the paths of visible fields that are effectively
// required.
func (r Resolution) RequiredPaths() []string {
	return r.paths(func(f Field) bool { return f.Required })
}

// DisabledPaths lists the paths of visible fields that are effectively
// disabled.
func (r Resolution) DisabledPaths() []string {
	return r.paths(func(f Field) bool { return f.Disabled })
}

// RequiredFields returns the visible, required fields.
func (r Resolution) RequiredFields() []Field {
	var out []Field
	for _, field := range r.Fields() {
		if field.Required {
			out = append(out, field)
		}
	}
	return out
}

func (r Resolution) paths(keep func(Field) bool) []string {
	var out []string
	for _, field := range r.Fields() {
		if keep(field) {
			out = append(out, field.Path)
		}
	}
	return out
}
