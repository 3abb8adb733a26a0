package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

type resolvedOption struct {
	Value    any    `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

type resolvedField struct {
	Path     string           `json:"path"`
	Type     string           `json:"type"`
	Required bool             `json:"required,omitempty"`
	Disabled bool             `json:"disabled,omitempty"`
	Options  []resolvedOption `json:"options,omitempty"`
}

type resolvedSection struct {
	ID     string          `json:"id"`
	Fields []resolvedField `json:"fields"`
}

type resolvedStep struct {
	ID       string            `json:"id"`
	Sections []resolvedSection `json:"sections"`
}

type resolveOutput struct {
	Wizard string                  `json:"wizard"`
	Steps  []resolvedStep          `json:"steps"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		valuesFile string
		check      bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <wizard-id>",
		Short: "Print the visible sections, fields, and options for a set of values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.wizard(args[0])
			if err != nil {
				return err
			}
			values, err := readValues(cmd.InOrStdin(), valuesFile)
			if err != nil {
				return err
			}

			resolutions := visibility.ResolveWizard(w, values)
			out := resolveOutput{Wizard: w.ID, Steps: make([]resolvedStep, 0, len(resolutions))}
			var visible []visibility.Field
			for _, res := range resolutions {
				out.Steps = append(out.Steps, describeResolution(res))
				visible = append(visible, res.Fields()...)
			}
			if check {
				out.Errors = validation.ValidateFields(values, visible, nil).Errors
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&valuesFile, "values", "f", "", `JSON file with form values ("-" reads stdin)`)
	cmd.Flags().BoolVar(&check, "check", false, "Also validate every visible field")
	return cmd
}

func describeResolution(res visibility.Resolution) resolvedStep {
	step := resolvedStep{ID: res.StepID, Sections: []resolvedSection{}}
	for _, section := range res.Sections() {
		rs := resolvedSection{ID: section.ID, Fields: make([]resolvedField, 0, len(section.Fields))}
		for _, field := range section.Fields {
			rf := resolvedField{
				Path:     field.Path,
				Type:     string(field.Config.Type),
				Required: field.Required,
				Disabled: field.Disabled,
			}
			for _, option := range field.Options {
				rf.Options = append(rf.Options, resolvedOption(option))
			}
			rs.Fields = append(rs.Fields, rf)
		}
		step.Sections = append(step.Sections, rs)
	}
	return step
}

func readValues(stdin io.Reader, path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}
