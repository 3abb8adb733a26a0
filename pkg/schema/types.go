package schema

import "github.com/goliatone/go-formflow/pkg/condition"

// FieldType enumerates the input kinds a wizard field can take.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldNumber    FieldType = "number"
	FieldTextarea  FieldType = "textarea"
	FieldSelect    FieldType = "select"
	FieldRadio     FieldType = "radio"
	FieldChipRadio FieldType = "chip-radio"
	FieldChipMulti FieldType = "chip-multi"
	FieldToggle    FieldType = "toggle"
	FieldCheckbox  FieldType = "checkbox"
	FieldCounter   FieldType = "counter"
)

// FieldTypes lists every supported type in a stable order.
var FieldTypes = []FieldType{
	FieldText, FieldNumber, FieldTextarea, FieldSelect, FieldRadio,
	FieldChipRadio, FieldChipMulti, FieldToggle, FieldCheckbox, FieldCounter,
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether the field picks from Options.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldSelect, FieldRadio, FieldChipRadio, FieldChipMulti:
		return true
	default:
		return false
	}
}

// IsMulti reports whether the field holds a list of option values.
func (t FieldType) IsMulti() bool {
	return t == FieldChipMulti
}

// IsNumeric reports whether the field holds a number.
func (t FieldType) IsNumeric() bool {
	return t == FieldNumber || t == FieldCounter
}

// IsBoolean reports whether the field holds a bool.
func (t FieldType) IsBoolean() bool {
	return t == FieldToggle || t == FieldCheckbox
}

// IsText reports whether the field holds free text.
func (t FieldType) IsText() bool {
	return t == FieldText || t == FieldTextarea
}

// Option is a selectable value of a choice field.
type Option struct {
	Value       any            `json:"value" yaml:"value"`
	Label       string         `json:"label" yaml:"label"`
	VisibleWhen condition.Rule `json:"visibleWhen,omitzero" yaml:"visibleWhen,omitempty"`
	DisabledIf  condition.Rule `json:"disabledIf,omitzero" yaml:"disabledIf,omitempty"`
}

// FieldConfig describes a single input. ID is the dotted path under which
// the value is stored.
type FieldConfig struct {
	ID           string         `json:"id" yaml:"id"`
	Label        string         `json:"label" yaml:"label"`
	Type         FieldType      `json:"type" yaml:"type"`
	Required     bool           `json:"required,omitempty" yaml:"required,omitempty"`
	RequiredWhen condition.Rule `json:"requiredWhen,omitzero" yaml:"requiredWhen,omitempty"`
	VisibleWhen  condition.Rule `json:"visibleWhen,omitzero" yaml:"visibleWhen,omitempty"`
	DisabledIf   condition.Rule `json:"disabledIf,omitzero" yaml:"disabledIf,omitempty"`
	Options      []Option       `json:"options,omitempty" yaml:"options,omitempty"`
	Min          *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64       `json:"max,omitempty" yaml:"max,omitempty"`
	Step         *float64       `json:"step,omitempty" yaml:"step,omitempty"`
	Placeholder  string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText     string         `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Meta         map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// SectionConfig groups fields and can be hidden as a whole.
type SectionConfig struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	VisibleWhen condition.Rule `json:"visibleWhen,omitzero" yaml:"visibleWhen,omitempty"`
	Fields      []FieldConfig  `json:"fields" yaml:"fields"`
}

// StepConfig is one page of the wizard.
type StepConfig struct {
	ID       string          `json:"id" yaml:"id"`
	Title    string          `json:"title" yaml:"title"`
	Sections []SectionConfig `json:"sections" yaml:"sections"`
}

// Wizard is the ordered list of steps that make up a form. The index into
// Steps is the wizard's only navigation state.
type Wizard struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []StepConfig `json:"steps" yaml:"steps"`
	Source      string       `json:"-" yaml:"-"`
}

// Float is a convenience for populating Min/Max/Step literals.
func Float(v float64) *float64 {
	return &v
}
