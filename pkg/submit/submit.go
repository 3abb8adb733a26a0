// Package submit hands completed form values to an external collaborator.
package submit

import (
	"context"
	"time"
)

// Submission is the payload produced by a completed wizard.
type Submission struct {
	ID          string         `json:"id"`
	WizardID    string         `json:"wizardId"`
	SessionID   string         `json:"sessionId,omitempty"`
	Values      map[string]any `json:"values"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// Receipt acknowledges an accepted submission.
type Receipt struct {
	ID       string `json:"id"`
	Location string `json:"location,omitempty"`
}

// Submitter delivers a submission. Errors are reported back to the user and
// leave the wizard in place, so implementations may be retried.
type Submitter interface {
	Submit(ctx context.Context, submission Submission) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, submission Submission) (Receipt, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, submission Submission) (Receipt, error) {
	return f(ctx, submission)
}

// Discard accepts every submission without doing anything with it.
var Discard Submitter = SubmitterFunc(func(_ context.Context, submission Submission) (Receipt, error) {
	return Receipt{ID: submission.ID}, nil
})
