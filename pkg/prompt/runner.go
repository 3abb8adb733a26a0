package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPageSize limits how many options select prompts show at once.
func WithPageSize(size int) Option {
	return func(r *Runner) {
		r.pageSize = size
	}
}

// Runner asks for every visible field of each step, re-resolving visibility
// after each answer so dependent fields appear as soon as they apply.
type Runner struct {
	driver   Driver
	logger   *zap.Logger
	pageSize int
}

// NewRunner constructs a Runner over driver.
func NewRunner(driver Driver, options ...Option) *Runner {
	r := &Runner{driver: driver, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run walks c from its current step to submission. Declining to submit saves
// a draft when the controller has a draft store and returns ErrAborted.
func (r *Runner) Run(ctx context.Context, c *wizard.Controller) (wizard.SubmitResult, error) {
	if r.driver == nil {
		return wizard.SubmitResult{}, errors.New("prompt: driver is required")
	}
	w := c.Wizard()
	pending := map[string]bool{}
	asked := map[string]bool{}
	blocked := false

	for {
		if err := ctx.Err(); err != nil {
			return wizard.SubmitResult{}, err
		}
		step := c.Step()
		if err := r.driver.Info(ctx, fmt.Sprintf("== Step %d/%d: %s", c.Current()+1, w.Len(), titleOf(step))); err != nil {
			return wizard.SubmitResult{}, err
		}
		n, err := r.askStep(ctx, c, asked, pending)
		if err != nil {
			return wizard.SubmitResult{}, err
		}
		if blocked && n == 0 {
			return wizard.SubmitResult{}, fmt.Errorf("prompt: step %q cannot be completed", step.ID)
		}
		blocked = false

		if !c.IsLast() {
			res, err := c.Next(ctx)
			if err != nil {
				return wizard.SubmitResult{}, err
			}
			if !res.Validation.Valid {
				if err := r.report(ctx, res.Validation); err != nil {
					return wizard.SubmitResult{}, err
				}
				markPending(pending, asked, res.Validation)
				blocked = true
			}
			continue
		}

		ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit " + wizardTitle(w) + "?", Default: true})
		if err != nil {
			return wizard.SubmitResult{}, err
		}
		if !ok {
			if err := c.SaveDraft(ctx); err != nil && !errors.Is(err, wizard.ErrNoDrafts) {
				return wizard.SubmitResult{}, err
			}
			return wizard.SubmitResult{}, ErrAborted
		}

		res, err := c.Submit(ctx)
		switch {
		case errors.Is(err, wizard.ErrSubmission):
			r.logger.Warn("submission failed", zap.Error(err))
			if infoErr := r.driver.Info(ctx, "Submission failed: "+err.Error()); infoErr != nil {
				return res, infoErr
			}
			retry, confirmErr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Retry?", Default: true})
			if confirmErr != nil {
				return res, confirmErr
			}
			if !retry {
				return res, err
			}
			continue
		case err != nil:
			return res, err
		case res.Submitted:
			return res, nil
		}

		if err := r.report(ctx, res.Validation); err != nil {
			return res, err
		}
		markPending(pending, asked, res.Validation)
		blocked = true
		target := firstStepOf(w, res.Validation.Paths())
		for c.Current() > target {
			if _, err := c.Back(); err != nil {
				return res, err
			}
		}
	}
}

func (r *Runner) askStep(ctx context.Context, c *wizard.Controller, asked, pending map[string]bool) (int, error) {
	n := 0
	for {
		field, ok := nextField(c.View(), asked, pending)
		if !ok {
			return n, nil
		}
		asked[field.Path] = true
		delete(pending, field.Path)
		n++
		if err := r.ask(ctx, c, field); err != nil {
			return n, err
		}
	}
}

// nextField returns the first visible, enabled field not yet asked, or one
// that failed validation.
func nextField(view visibility.Resolution, asked, pending map[string]bool) (visibility.Field, bool) {
	for _, field := range view.Fields() {
		if field.Disabled {
			continue
		}
		if !asked[field.Path] || pending[field.Path] {
			return field, true
		}
	}
	return visibility.Field{}, false
}

func (r *Runner) ask(ctx context.Context, c *wizard.Controller, field visibility.Field) error {
	cfg := field.Config
	message := cfg.Label
	if message == "" {
		message = field.Path
	}
	if field.Required {
		message += " *"
	}
	current, _ := condition.Lookup(c.Values(), field.Path)

	switch {
	case cfg.Type.IsBoolean():
		def, _ := current.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def, Help: cfg.HelpText})
		if err != nil {
			return err
		}
		return c.Set(field.Path, answer)

	case cfg.Type.IsMulti():
		labels, values := enabledOptions(field)
		var defaults []int
		if list, ok := current.([]any); ok {
			for idx, value := range values {
				for _, selected := range list {
					if condition.StrictEqual(value, selected) {
						defaults = append(defaults, idx)
					}
				}
			}
		}
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: defaults, Help: cfg.HelpText, PageSize: r.pageSize})
		if err != nil {
			return err
		}
		out := make([]any, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(values) {
				out = append(out, values[idx])
			}
		}
		return c.Set(field.Path, out)

	case cfg.Type.IsChoice():
		labels, values := enabledOptions(field)
		if len(labels) == 0 {
			return nil
		}
		def := 0
		for idx, value := range values {
			if condition.StrictEqual(value, current) {
				def = idx
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: def, Help: cfg.HelpText, PageSize: r.pageSize})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(values) {
			return fmt.Errorf("prompt: invalid selection for %s", field.Path)
		}
		return c.Set(field.Path, values[idx])

	case cfg.Type == schema.FieldTextarea:
		def, _ := current.(string)
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: def, Help: cfg.HelpText})
		if err != nil {
			return err
		}
		return setText(c, field.Path, answer)

	case cfg.Type.IsNumeric():
		def := ""
		if n, ok := condition.Number(current); ok {
			def = strconv.FormatFloat(n, 'f', -1, 64)
		}
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: def, Help: cfg.HelpText, Validator: numberValidator})
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return nil
		}
		n, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return c.Set(field.Path, answer)
		}
		return c.Set(field.Path, n)

	default:
		def, _ := current.(string)
		answer, err := r.driver.Input(ctx, InputConfig{Message: message, Default: def, Help: cfg.HelpText})
		if err != nil {
			return err
		}
		return setText(c, field.Path, answer)
	}
}

func (r *Runner) report(ctx context.Context, result validation.Result) error {
	for _, fe := range result.Errors {
		if err := r.driver.Info(ctx, "  ! "+fe.Message); err != nil {
			return err
		}
	}
	return nil
}

func setText(c *wizard.Controller, path, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return nil
	}
	return c.Set(path, answer)
}

func numberValidator(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

func enabledOptions(field visibility.Field) ([]string, []any) {
	var labels []string
	var values []any
	for _, option := range field.Options {
		if option.Disabled {
			continue
		}
		label := option.Label
		if label == "" {
			label = fmt.Sprint(option.Value)
		}
		labels = append(labels, label)
		values = append(values, option.Value)
	}
	return labels, values
}

func markPending(pending, asked map[string]bool, result validation.Result) {
	for _, path := range result.Paths() {
		pending[path] = true
		asked[path] = true
	}
}

func firstStepOf(w *schema.Wizard, paths []string) int {
	target := w.Len() - 1
	for _, path := range paths {
		for idx, step := range w.Steps {
			if idx >= target {
				break
			}
			if stepDeclares(step, path) {
				target = idx
			}
		}
	}
	return target
}

func stepDeclares(step schema.StepConfig, path string) bool {
	for _, section := range step.Sections {
		for _, field := range section.Fields {
			if field.ID == path {
				return true
			}
		}
	}
	return false
}

func titleOf(step schema.StepConfig) string {
	if step.Title != "" {
		return step.Title
	}
	return step.ID
}

func wizardTitle(w *schema.Wizard) string {
	if w.Title != "" {
		return w.Title
	}
	return w.ID
}
