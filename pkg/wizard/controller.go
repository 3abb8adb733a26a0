// Package wizard drives a multi-step form: it owns the active step index,
// gates forward navigation on validation of the visible required fields,
// and hands the complete values to a Submitter on the last step.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/drafts"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Status is the lifecycle state of a controller.
type Status string

const (
	StatusEditing   Status = "editing"
	StatusSubmitted Status = "submitted"
)

// StepResult reports the outcome of Next.
type StepResult struct {
	Advanced   bool
	From       int
	To         int
	Validation validation.Result
}

// SubmitResult reports the outcome of Submit. Submitted is false when
// validation failed; the errors are in Validation.
type SubmitResult struct {
	Submitted  bool
	Receipt    submit.Receipt
	Validation validation.Result
}

// Controller is a single wizard session. It is safe for concurrent use.
type Controller struct {
	wizard     *schema.Wizard
	store      values.Store
	prefill    map[string]any
	submitter  submit.Submitter
	drafts     drafts.Store
	validators []validation.Validator
	logger     *zap.Logger
	sessionID  string
	now        func() time.Time

	mu         sync.Mutex
	current    int
	status     Status
	submitting bool
}

// New creates a controller positioned on the first step of w.
func New(w *schema.Wizard, options ...Option) (*Controller, error) {
	if w == nil {
		return nil, errors.New("wizard: schema is required")
	}
	if w.Len() == 0 {
		return nil, fmt.Errorf("wizard: %q has no steps", w.ID)
	}
	c := &Controller{
		wizard: w,
		status: StatusEditing,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.applyDefaults()
	c.logger.Debug("wizard session started", zap.Int("steps", w.Len()))
	return c, nil
}

func (c *Controller) applyDefaults() {
	if c.store == nil {
		c.store = values.NewMemoryStore(c.prefill)
	}
	if c.submitter == nil {
		c.submitter = submit.Discard
	}
	if c.sessionID == "" {
		c.sessionID = xid.New().String()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("wizard", c.wizard.ID), zap.String("session", c.sessionID))
}

// Wizard returns the schema the controller walks.
func (c *Controller) Wizard() *schema.Wizard {
	return c.wizard
}

// SessionID identifies this session for drafts and submissions.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Current returns the active step index.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Status returns the lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Step returns the active step definition.
func (c *Controller) Step() schema.StepConfig {
	step, _ := c.wizard.Step(c.Current())
	return step
}

// IsLast reports whether the active step is the final one.
func (c *Controller) IsLast() bool {
	return c.Current() == c.wizard.Len()-1
}

// View resolves the active step against the current values.
func (c *Controller) View() visibility.Resolution {
	return visibility.Resolve(c.Step(), c.store.Snapshot())
}

// Values returns a snapshot of the form values.
func (c *Controller) Values() map[string]any {
	return c.store.Snapshot()
}

// Store exposes the underlying form-state store.
func (c *Controller) Store() values.Store {
	return c.store
}

// Set writes a value into the store.
func (c *Controller) Set(path string, value any) error {
	c.mu.Lock()
	submitted := c.status == StatusSubmitted
	c.mu.Unlock()
	if submitted {
		return ErrSubmitted
	}
	return c.store.Set(path, value)
}

// Next validates exactly the visible, effectively required fields of the
// active step and advances by one step when they pass. A failed validation is
// reported in the result, not as an error. On the last step a passing Next
// stays in place.
func (c *Controller) Next(ctx context.Context) (StepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return StepResult{}, err
	}

	snapshot := c.store.Snapshot()
	step, _ := c.wizard.Step(c.current)
	view := visibility.Resolve(step, snapshot)
	required := view.RequiredFields()

	result := validation.ValidateFields(snapshot, required, nil)
	result, err := c.runValidators(ctx, snapshot, required, result)
	if err != nil {
		return StepResult{}, err
	}

	out := StepResult{From: c.current, To: c.current, Validation: result}
	if !result.Valid {
		c.logger.Debug("step blocked",
			zap.String("step", step.ID),
			zap.Strings("fields", result.Paths()),
		)
		return out, nil
	}
	if last := c.wizard.Len() - 1; c.current < last {
		c.current++
	}
	out.To = c.current
	out.Advanced = out.To != out.From
	c.logger.Debug("step advanced", zap.Int("from", out.From), zap.Int("to", out.To))
	return out, nil
}

// Back moves to the previous step without validating. It stays on the first
// step.
func (c *Controller) Back() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return c.current, err
	}
	if c.current > 0 {
		c.current--
	}
	return c.current, nil
}

// Submit validates every visible field of every step and, when all pass,
// hands the values to the Submitter. It is only allowed on the last step.
// A Submitter failure is returned wrapped in ErrSubmission and leaves the
// session untouched so the call can be retried.
func (c *Controller) Submit(ctx context.Context) (SubmitResult, error) {
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return SubmitResult{}, err
	}
	if c.current != c.wizard.Len()-1 {
		c.mu.Unlock()
		return SubmitResult{}, ErrNotLastStep
	}

	snapshot := c.store.Snapshot()
	var fields []visibility.Field
	for _, res := range visibility.ResolveWizard(c.wizard, snapshot) {
		fields = append(fields, res.Fields()...)
	}
	result := validation.ValidateFields(snapshot, fields, nil)
	result, err := c.runValidators(ctx, snapshot, fields, result)
	if err != nil {
		c.mu.Unlock()
		return SubmitResult{}, err
	}
	if !result.Valid {
		c.mu.Unlock()
		c.logger.Debug("submit blocked", zap.Strings("fields", result.Paths()))
		return SubmitResult{Validation: result}, nil
	}
	c.submitting = true
	c.mu.Unlock()

	submission := submit.Submission{
		ID:          xid.New().String(),
		WizardID:    c.wizard.ID,
		SessionID:   c.sessionID,
		Values:      snapshot,
		SubmittedAt: c.now().UTC(),
	}
	receipt, err := c.submitter.Submit(ctx, submission)

	c.mu.Lock()
	c.submitting = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("submission failed", zap.Error(err))
		return SubmitResult{Validation: result}, fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	c.status = StatusSubmitted
	c.mu.Unlock()

	c.logger.Info("wizard submitted", zap.String("submission", submission.ID))
	if c.drafts != nil {
		if err := c.drafts.Delete(ctx, c.sessionID); err != nil {
			c.logger.Warn("discard draft", zap.Error(err))
		}
	}
	return SubmitResult{Submitted: true, Receipt: receipt, Validation: result}, nil
}

func (c *Controller) editableLocked() error {
	if c.status == StatusSubmitted {
		return ErrSubmitted
	}
	if c.submitting {
		return ErrSubmitInFlight
	}
	return nil
}

func (c *Controller) runValidators(ctx context.Context, snapshot map[string]any, fields []visibility.Field, result validation.Result) (validation.Result, error) {
	for _, v := range c.validators {
		extra, err := v.Validate(ctx, snapshot, fields)
		if err != nil {
			return result, fmt.Errorf("wizard: validate: %w", err)
		}
		result = result.Merge(extra)
	}
	return result, nil
}
