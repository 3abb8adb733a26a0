package schema

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

type reloadResult struct {
	store *Store
	err   error
}

func writeWizardFile(t *testing.T, path, id string) {
	t.Helper()
	doc := fmt.Sprintf(`id: %s
steps:
  - id: s1
    sections:
      - id: main
        fields:
          - { id: name, label: Name, type: text }
`, id)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitForReload(t *testing.T, results <-chan reloadResult, match func(reloadResult) bool) reloadResult {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case res := <-results:
			if match(res) {
				return res
			}
		case <-timeout:
			t.Fatalf("timed out waiting for reload")
			return reloadResult{}
		}
	}
}

func hasWizard(id string) func(reloadResult) bool {
	return func(res reloadResult) bool {
		return res.err == nil && res.store != nil && slices.Contains(res.store.IDs(), id)
	}
}

func startWatcher(t *testing.T, dir string) (*Watcher, <-chan reloadResult) {
	t.Helper()
	w, err := NewWatcher(dir, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	results := make(chan reloadResult, 256)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(store *Store, err error) {
			select {
			case results <- reloadResult{store: store, err: err}:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})

	select {
	case <-w.ready:
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not start")
	}
	return w, results
}

func TestWatcherReloadsNestedFilesAndKeepsStoreOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	nested := filepath.Join(dir, "listings")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeWizardFile(t, filepath.Join(nested, "a.yaml"), "a")

	w, results := startWatcher(t, dir)
	if !slices.Contains(w.Store().IDs(), "a") {
		t.Fatalf("initial store should hold a, got %v", w.Store().IDs())
	}

	writeWizardFile(t, filepath.Join(nested, "b.yaml"), "b")
	waitForReload(t, results, hasWizard("b"))

	if err := os.WriteFile(filepath.Join(nested, "b.yaml"), []byte("id: b\nsteps: []\n"), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	waitForReload(t, results, func(res reloadResult) bool { return res.err != nil })

	ids := w.Store().IDs()
	if !slices.Contains(ids, "a") || !slices.Contains(ids, "b") {
		t.Fatalf("failed reload must keep previous store, got %v", ids)
	}
}

func TestWatcherPicksUpDirectoriesCreatedLater(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeWizardFile(t, filepath.Join(dir, "a.yaml"), "a")
	w, results := startWatcher(t, dir)

	later := filepath.Join(dir, "later")
	if err := os.Mkdir(later, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	waitForReload(t, results, hasWizard("a"))

	writeWizardFile(t, filepath.Join(later, "c.yaml"), "c")
	waitForReload(t, results, hasWizard("c"))

	if !slices.Contains(w.Store().IDs(), "c") {
		t.Fatalf("expected c after reload, got %v", w.Store().IDs())
	}
}
