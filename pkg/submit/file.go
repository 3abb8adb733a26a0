package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"
)

// FileSubmitter writes each submission as an indented JSON document under
// Dir. File names are <wizard>-<id>.json.
type FileSubmitter struct {
	Dir string
	Now func() time.Time
}

// NewFileSubmitter returns a FileSubmitter rooted at dir.
func NewFileSubmitter(dir string) *FileSubmitter {
	return &FileSubmitter{Dir: dir}
}

// Submit persists submission and returns its location.
func (f *FileSubmitter) Submit(ctx context.Context, submission Submission) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if f.Dir == "" {
		return Receipt{}, fmt.Errorf("submit: output directory is required")
	}
	if submission.ID == "" {
		submission.ID = xid.New().String()
	}
	if submission.SubmittedAt.IsZero() {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		submission.SubmittedAt = now().UTC()
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return Receipt{}, fmt.Errorf("submit: create %s: %w", f.Dir, err)
	}
	data, err := json.MarshalIndent(submission, "", "  ")
	if err != nil {
		return Receipt{}, fmt.Errorf("submit: encode submission: %w", err)
	}

	name := submission.ID + ".json"
	if submission.WizardID != "" {
		name = submission.WizardID + "-" + name
	}
	path := filepath.Join(f.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Receipt{}, fmt.Errorf("submit: write %s: %w", path, err)
	}
	return Receipt{ID: submission.ID, Location: path}, nil
}
