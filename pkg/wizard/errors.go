package wizard

import "errors"

var (
	// ErrNotLastStep is returned when Submit is called before the last step.
	ErrNotLastStep = errors.New("wizard: submit is only allowed on the last step")
	// ErrSubmission wraps a failure reported by the Submitter. The wizard
	// stays on the last step with its values intact so the caller can retry.
	ErrSubmission = errors.New("wizard: submission failed")
	// ErrSubmitInFlight is returned while a previous Submit has not returned.
	ErrSubmitInFlight = errors.New("wizard: submission already in flight")
	// ErrSubmitted is returned by mutating calls after a successful Submit.
	ErrSubmitted = errors.New("wizard: already submitted")
	// ErrNoDrafts is returned by draft operations when no store is configured.
	ErrNoDrafts = errors.New("wizard: draft store is not configured")
)
