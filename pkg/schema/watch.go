package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher keeps a Store in sync with a schema directory tree. Reloads replace
// the whole store; a failed reload keeps the previous one.
type Watcher struct {
	dir     string
	options []LoadOption
	logger  *zap.Logger

	mu    sync.RWMutex
	store *Store

	readyOnce sync.Once
	ready     chan struct{}
}

// NewWatcher loads dir once and returns a Watcher serving the result.
func NewWatcher(dir string, logger *zap.Logger, options ...LoadOption) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := LoadDir(dir, options...)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		options: options,
		logger:  logger,
		store:   store,
		ready:   make(chan struct{}),
	}, nil
}

// Store returns the most recent successfully loaded store.
func (w *Watcher) Store() *Store {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.store
}

// Reload re-reads the directory and swaps the store on success.
func (w *Watcher) Reload() (*Store, error) {
	store, err := LoadDir(w.dir, w.options...)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.store = store
	w.mu.Unlock()
	return store, nil
}

// Run watches the directory and every subdirectory until ctx is done.
// Directories created while running are watched too. onReload, when set, is
// called after every reload attempt with the new store or the load error.
func (w *Watcher) Run(ctx context.Context, onReload func(*Store, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("schema: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, w.dir); err != nil {
		return fmt.Errorf("schema: watch dir %q: %w", w.dir, err)
	}
	w.readyOnce.Do(func() { close(w.ready) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := addTree(watcher, event.Name); err != nil {
					w.logger.Warn("schema watch add failed", zap.String("dir", event.Name), zap.Error(err))
				}
				w.reload(event.Name, onReload)
				continue
			}
			if !isSchemaFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.reload(event.Name, onReload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("schema: watch %q: %w", w.dir, err)
		}
	}
}

func (w *Watcher) reload(name string, onReload func(*Store, error)) {
	rel, relErr := filepath.Rel(w.dir, name)
	if relErr != nil {
		rel = filepath.Base(name)
	}
	store, err := w.Reload()
	if err != nil {
		w.logger.Warn("schema reload failed", zap.String("path", rel), zap.Error(err))
	} else {
		w.logger.Info("schema reloaded", zap.String("path", rel), zap.Strings("wizards", store.IDs()))
	}
	if onReload != nil {
		onReload(store, err)
	}
}

// addTree watches root and every directory below it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path != root && errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
