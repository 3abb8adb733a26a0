package wizard

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/drafts"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/values"
)

// Option configures a Controller.
type Option func(*Controller)

// WithStore supplies the form-state store. Defaults to an empty MemoryStore.
func WithStore(store values.Store) Option {
	return func(c *Controller) {
		if store != nil {
			c.store = store
		}
	}
}

// WithValues seeds the default store with prefill. Ignored when WithStore is
// also given.
func WithValues(prefill map[string]any) Option {
	return func(c *Controller) {
		c.prefill = prefill
	}
}

// WithSubmitter sets the collaborator that receives completed values.
// Defaults to submit.Discard.
func WithSubmitter(submitter submit.Submitter) Option {
	return func(c *Controller) {
		if submitter != nil {
			c.submitter = submitter
		}
	}
}

// WithDrafts enables SaveDraft and Resume.
func WithDrafts(store drafts.Store) Option {
	return func(c *Controller) {
		c.drafts = store
	}
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithValidator adds a validator that runs after the built-in field checks.
// Its errors are merged into the same result.
func WithValidator(v validation.Validator) Option {
	return func(c *Controller) {
		if v != nil {
			c.validators = append(c.validators, v)
		}
	}
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}
