package openapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

const (
	mainSectionID = "fields"
	maxDepth      = 6
)

// ImportOptions tunes ImportOperation.
type ImportOptions struct {
	// WizardID overrides the generated wizard id (defaults to the operation id).
	WizardID string
	// AllowExternalRefs lets the loader follow $refs outside the document.
	AllowExternalRefs bool
	// TextareaThreshold turns string properties with a larger maxLength into
	// textareas. Zero uses 280.
	TextareaThreshold uint64
}

// ImportOption mutates ImportOptions.
type ImportOption func(*ImportOptions)

// WithWizardID sets the id of the generated wizard.
func WithWizardID(id string) ImportOption {
	return func(o *ImportOptions) {
		o.WizardID = id
	}
}

// WithExternalRefs toggles external reference resolution.
func WithExternalRefs(enabled bool) ImportOption {
	return func(o *ImportOptions) {
		o.AllowExternalRefs = enabled
	}
}

// Operation summarises an operation that can be imported.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Operations lists the operations of raw that carry a request body, sorted by
// id. Operations without an operationId are named "<method>:<path>".
func Operations(ctx context.Context, raw []byte, options ...ImportOption) ([]Operation, error) {
	spec, err := load(ctx, raw, resolveOptions(options))
	if err != nil {
		return nil, err
	}
	var out []Operation
	walkOperations(spec, func(id, method, path string, op *openapi3.Operation) {
		if requestSchema(op) == nil {
			return
		}
		out = append(out, Operation{ID: id, Method: method, Path: path, Summary: op.Summary})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ImportOperation builds a single-step wizard from the request body of
// operationID. Top-level scalar properties land in one section; every nested
// object becomes its own section whose fields use dotted paths. Properties
// that cannot be expressed as a wizard field (arrays of objects, untyped
// values) are skipped.
func ImportOperation(ctx context.Context, raw []byte, operationID string, options ...ImportOption) (*schema.Wizard, error) {
	if strings.TrimSpace(operationID) == "" {
		return nil, errors.New("openapi: operation id is required")
	}
	cfg := resolveOptions(options)
	spec, err := load(ctx, raw, cfg)
	if err != nil {
		return nil, err
	}

	var found *openapi3.Operation
	walkOperations(spec, func(id, _, _ string, op *openapi3.Operation) {
		if id == operationID {
			found = op
		}
	})
	if found == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	body := requestSchema(found)
	if body == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}

	wizardID := cfg.WizardID
	if wizardID == "" {
		wizardID = operationID
	}
	title := found.Summary
	if title == "" {
		title = humanize(operationID)
	}

	b := &builder{threshold: cfg.TextareaThreshold}
	main := schema.SectionConfig{ID: mainSectionID, Title: title}
	b.sections = append(b.sections, &main)
	b.object(&main, "", flatten(body), 0)
	main.ID = b.uniqueSectionID(mainSectionID, &main)

	step := schema.StepConfig{ID: wizardID, Title: title}
	for _, section := range b.sections {
		if len(section.Fields) == 0 {
			continue
		}
		step.Sections = append(step.Sections, *section)
	}
	w := &schema.Wizard{
		ID:          wizardID,
		Title:       title,
		Description: found.Description,
		Steps:       []schema.StepConfig{step},
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("openapi: import %q: %w", operationID, err)
	}
	return w, nil
}

func resolveOptions(options []ImportOption) ImportOptions {
	cfg := ImportOptions{TextareaThreshold: 280}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.TextareaThreshold == 0 {
		cfg.TextareaThreshold = 280
	}
	return cfg
}

func load(ctx context.Context, raw []byte, cfg ImportOptions) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.AllowExternalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil || spec.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}
	return spec, nil
}

func walkOperations(spec *openapi3.T, fn func(id, method, path string, op *openapi3.Operation)) {
	for _, path := range spec.Paths.InMatchingOrder() {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			fn(id, method, path, op)
		}
	}
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// flatten merges allOf members into one object schema.
func flatten(src *openapi3.Schema) *openapi3.Schema {
	if src == nil || len(src.AllOf) == 0 {
		return src
	}
	out := *src
	out.Properties = make(openapi3.Schemas, len(src.Properties))
	for name, prop := range src.Properties {
		out.Properties[name] = prop
	}
	out.Required = append([]string(nil), src.Required...)
	for _, ref := range src.AllOf {
		if ref == nil || ref.Value == nil {
			continue
		}
		part := flatten(ref.Value)
		for name, prop := range part.Properties {
			if _, exists := out.Properties[name]; !exists {
				out.Properties[name] = prop
			}
		}
		for _, name := range part.Required {
			if !slices.Contains(out.Required, name) {
				out.Required = append(out.Required, name)
			}
		}
		if out.Type == nil {
			out.Type = part.Type
		}
	}
	out.AllOf = nil
	return &out
}

type builder struct {
	threshold uint64
	sections  []*schema.SectionConfig
}

// uniqueSectionID returns base, or base with a numeric suffix when a nested
// object section already uses it.
func (b *builder) uniqueSectionID(base string, self *schema.SectionConfig) string {
	taken := func(id string) bool {
		for _, section := range b.sections {
			if section != self && section.ID == id {
				return true
			}
		}
		return false
	}
	id := base
	for n := 2; taken(id); n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func (b *builder) object(section *schema.SectionConfig, prefix string, obj *openapi3.Schema, depth int) {
	if obj == nil || depth > maxDepth {
		return
	}
	names := make([]string, 0, len(obj.Properties))
	for name := range obj.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := obj.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := flatten(ref.Value)
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		required := slices.Contains(obj.Required, name)

		if prop.Type.Is(openapi3.TypeObject) || (prop.Type == nil && len(prop.Properties) > 0) {
			nested := &schema.SectionConfig{ID: path, Title: label(name, prop)}
			b.sections = append(b.sections, nested)
			b.object(nested, path, prop, depth+1)
			continue
		}
		if field, ok := b.field(path, name, prop, required); ok {
			section.Fields = append(section.Fields, field)
		}
	}
}

func (b *builder) field(path, name string, prop *openapi3.Schema, required bool) (schema.FieldConfig, bool) {
	field := schema.FieldConfig{
		ID:       path,
		Label:    label(name, prop),
		Required: required,
		HelpText: prop.Description,
	}
	switch {
	case prop.Type.Is(openapi3.TypeBoolean):
		field.Type = schema.FieldToggle
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		field.Type = schema.FieldNumber
		if len(prop.Enum) > 0 {
			field.Type = schema.FieldSelect
			field.Options = options(prop.Enum)
			break
		}
		field.Min = prop.Min
		field.Max = prop.Max
		if prop.Type.Is(openapi3.TypeInteger) {
			field.Step = schema.Float(1)
		}
		if prop.MultipleOf != nil && *prop.MultipleOf > 0 {
			field.Step = schema.Float(*prop.MultipleOf)
		}
	case prop.Type.Is(openapi3.TypeString):
		switch {
		case len(prop.Enum) > 0:
			field.Type = schema.FieldSelect
			field.Options = options(prop.Enum)
		case prop.Format == "textarea" || (prop.MaxLength != nil && *prop.MaxLength > b.threshold):
			field.Type = schema.FieldTextarea
		default:
			field.Type = schema.FieldText
		}
	case prop.Type.Is(openapi3.TypeArray):
		if prop.Items == nil || prop.Items.Value == nil || len(prop.Items.Value.Enum) == 0 {
			return schema.FieldConfig{}, false
		}
		field.Type = schema.FieldChipMulti
		field.Options = options(prop.Items.Value.Enum)
	default:
		return schema.FieldConfig{}, false
	}
	if prop.Default != nil {
		field.Meta = map[string]any{"default": prop.Default}
	}
	return field, true
}

func options(values []any) []schema.Option {
	out := make([]schema.Option, 0, len(values))
	for _, value := range values {
		out = append(out, schema.Option{Value: value, Label: humanize(fmt.Sprint(value))})
	}
	return out
}

func label(name string, prop *openapi3.Schema) string {
	if prop != nil && prop.Title != "" {
		return prop.Title
	}
	return humanize(name)
}

// humanize turns camelCase, snake_case, and kebab-case identifiers into a
// capitalised label.
func humanize(raw string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	runes := []rune(raw)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.' || r == ':' || r == '/':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current = append(current, unicode.ToLower(r))
		default:
			current = append(current, unicode.ToLower(r))
		}
	}
	flush()
	if len(words) == 0 {
		return raw
	}
	out := strings.Join(words, " ")
	first := []rune(out)
	first[0] = unicode.ToUpper(first[0])
	return string(first)
}
