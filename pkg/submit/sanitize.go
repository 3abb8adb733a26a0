package submit

import (
	"context"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/values"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

const maxSanitizePasses = 8

// SanitizeText strips every tag from raw and returns plain text. Entities are
// decoded and the result sanitized again until nothing changes, so encoded
// markup cannot come back out as tags.
func SanitizeText(raw string) string {
	policy := textSanitizer()
	text := raw
	for range maxSanitizePasses {
		cleaned := html.UnescapeString(policy.Sanitize(text))
		if cleaned == text {
			return strings.TrimSpace(cleaned)
		}
		text = cleaned
	}
	return strings.TrimSpace(policy.Sanitize(text))
}

// Sanitize returns a copy of input with markup stripped from the text and
// textarea fields declared by w. Other values are copied untouched.
func Sanitize(w *schema.Wizard, input map[string]any) map[string]any {
	store := values.NewMemoryStore(input)
	if w == nil {
		return store.Snapshot()
	}
	for _, field := range w.Fields() {
		if !field.Type.IsText() {
			continue
		}
		raw, ok := store.Get(field.ID)
		if !ok {
			continue
		}
		text, ok := raw.(string)
		if !ok {
			continue
		}
		_ = store.Set(field.ID, SanitizeText(text))
	}
	return store.Snapshot()
}

// Sanitizing wraps next so text values are sanitized before delivery.
func Sanitizing(w *schema.Wizard, next Submitter) Submitter {
	return SubmitterFunc(func(ctx context.Context, submission Submission) (Receipt, error) {
		submission.Values = Sanitize(w, submission.Values)
		return next.Submit(ctx, submission)
	})
}
