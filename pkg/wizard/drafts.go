package wizard

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/drafts"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// SaveDraft stores the active step and values under the session id.
func (c *Controller) SaveDraft(ctx context.Context) error {
	if c.drafts == nil {
		return ErrNoDrafts
	}
	c.mu.Lock()
	if err := c.editableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	draft := drafts.Draft{
		SessionID: c.sessionID,
		WizardID:  c.wizard.ID,
		Step:      c.current,
		Values:    c.store.Snapshot(),
		UpdatedAt: c.now().UTC(),
	}
	c.mu.Unlock()

	if err := c.drafts.Save(ctx, draft); err != nil {
		return fmt.Errorf("wizard: save draft: %w", err)
	}
	c.logger.Debug("draft saved", zap.Int("step", draft.Step))
	return nil
}

// Resume rebuilds a controller from the draft saved under sessionID. The
// draft store must be supplied with WithDrafts. The restored step index is
// clamped to the wizard's current length.
func Resume(ctx context.Context, w *schema.Wizard, sessionID string, options ...Option) (*Controller, error) {
	c, err := New(w, append(options, WithSessionID(sessionID))...)
	if err != nil {
		return nil, err
	}
	if c.drafts == nil {
		return nil, ErrNoDrafts
	}
	draft, err := c.drafts.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("wizard: resume %s: %w", sessionID, err)
	}
	if draft.WizardID != "" && draft.WizardID != w.ID {
		return nil, fmt.Errorf("wizard: draft %s belongs to wizard %q, not %q", sessionID, draft.WizardID, w.ID)
	}

	step := min(max(draft.Step, 0), w.Len()-1)
	c.store.Replace(draft.Values)
	c.mu.Lock()
	c.current = step
	c.mu.Unlock()
	c.logger.Debug("draft resumed", zap.Int("step", step))
	return c, nil
}
