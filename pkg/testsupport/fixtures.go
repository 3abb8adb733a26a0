package testsupport

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// RepoPath resolves a path relative to the module root so fixtures load the
// same way regardless of which package's tests are running.
func RepoPath(elem ...string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join(elem...)
	}
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return filepath.Join(append([]string{root}, elem...)...)
}

// LoadWizard parses a schema document, failing the test on error.
func LoadWizard(t *testing.T, path string, options ...schema.LoadOption) *schema.Wizard {
	t.Helper()

	wizard, err := schema.LoadFile(path, options...)
	if err != nil {
		t.Fatalf("load wizard %s: %v", path, err)
	}
	return wizard
}

// ListingWizard returns the property listing example shipped under schemas/.
func ListingWizard(t *testing.T) *schema.Wizard {
	t.Helper()
	return LoadWizard(t, RepoPath("schemas", "listing.yaml"))
}

// MustStep returns the step with the given id.
func MustStep(t *testing.T, wizard *schema.Wizard, id string) schema.StepConfig {
	t.Helper()

	idx := wizard.StepIndex(id)
	step, ok := wizard.Step(idx)
	if !ok {
		t.Fatalf("wizard %q has no step %q", wizard.ID, id)
	}
	return step
}

// AssertEqual fails with a cmp diff when want and got differ.
func AssertEqual(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
