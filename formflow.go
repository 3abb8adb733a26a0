// Package formflow evaluates declarative visibility and requiredness
// conditions over multi-step form wizards and drives them from first step to
// submission.
//
// Most callers load wizard definitions with pkg/schema and drive them with
// pkg/wizard; this package bundles the example wizards and a few shortcuts.
package formflow

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

//go:embed schemas/*.yaml
var embeddedSchemas embed.FS

// Wizard aliases schema.Wizard for callers that only import the root package.
type Wizard = schema.Wizard

// Controller aliases wizard.Controller.
type Controller = wizard.Controller

// ExampleSchemasFS exposes the bundled example wizard definitions.
func ExampleSchemasFS() fs.FS {
	sub, err := fs.Sub(embeddedSchemas, "schemas")
	if err != nil {
		return embeddedSchemas
	}
	return sub
}

// LoadExamples parses the bundled example wizards.
func LoadExamples(options ...schema.LoadOption) (*schema.Store, error) {
	return schema.LoadFS(ExampleSchemasFS(), options...)
}

// NewController looks up wizardID in store and starts a controller on it.
func NewController(store *schema.Store, wizardID string, options ...wizard.Option) (*wizard.Controller, error) {
	if store == nil {
		return nil, errors.New("formflow: schema store is nil")
	}
	w, ok := store.Wizard(wizardID)
	if !ok {
		return nil, fmt.Errorf("formflow: wizard %q not found", wizardID)
	}
	return wizard.New(w, options...)
}
