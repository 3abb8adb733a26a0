package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/wizard.schema.json
var documentSchemaFS embed.FS

const documentSchemaID = "wizard.schema.json"

// DocumentIssue is a single JSON Schema violation inside a wizard document.
type DocumentIssue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (i DocumentIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// DocumentError reports every violation found in one document.
type DocumentError struct {
	Source string
	Issues []DocumentIssue
}

func (e *DocumentError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("schema: %s does not match the wizard document schema: %s", e.Source, strings.Join(parts, "; "))
}

// DocumentValidator checks raw wizard documents against the embedded JSON
// Schema before they are decoded.
type DocumentValidator struct {
	schema *jsonschema.Schema
}

// NewDocumentValidator compiles the embedded wizard document schema.
func NewDocumentValidator() (*DocumentValidator, error) {
	data, err := documentSchemaFS.ReadFile("schemas/" + documentSchemaID)
	if err != nil {
		return nil, fmt.Errorf("schema: read embedded document schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("schema: parse embedded document schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(documentSchemaID, doc); err != nil {
		return nil, fmt.Errorf("schema: add document schema: %w", err)
	}
	compiled, err := c.Compile(documentSchemaID)
	if err != nil {
		return nil, fmt.Errorf("schema: compile document schema: %w", err)
	}
	return &DocumentValidator{schema: compiled}, nil
}

// ValidateBytes decodes data (JSON or YAML, chosen like Parse) and validates
// it. Decode failures are reported as a single issue.
func (v *DocumentValidator) ValidateBytes(data []byte, source string) []DocumentIssue {
	doc, err := toJSONValue(data, source)
	if err != nil {
		return []DocumentIssue{{Message: err.Error()}}
	}
	return v.ValidateValue(doc)
}

// ValidateValue validates an already decoded JSON value.
func (v *DocumentValidator) ValidateValue(doc any) []DocumentIssue {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []DocumentIssue{{Message: err.Error()}}
	}
	return collectIssues(ve)
}

func collectIssues(ve *jsonschema.ValidationError) []DocumentIssue {
	if len(ve.Causes) > 0 {
		var out []DocumentIssue
		for _, cause := range ve.Causes {
			out = append(out, collectIssues(cause)...)
		}
		return out
	}
	path := ""
	if len(ve.InstanceLocation) > 0 {
		path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	return []DocumentIssue{{Path: path, Message: ve.Error()}}
}

// toJSONValue normalises JSON and YAML input into the value model the
// validator expects (numbers as json.Number).
func toJSONValue(data []byte, source string) (any, error) {
	ext := strings.ToLower(filepath.Ext(source))
	if ext != ".yaml" && ext != ".yml" {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err == nil || ext == ".json" {
			return doc, err
		}
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
}
