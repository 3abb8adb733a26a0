// Package drafts persists in-progress wizard sessions so they can be resumed.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when no draft exists for a session.
var ErrNotFound = errors.New("drafts: not found")

// Draft is a snapshot of an editing session.
type Draft struct {
	SessionID string         `json:"sessionId"`
	WizardID  string         `json:"wizardId"`
	Step      int            `json:"step"`
	Values    map[string]any `json:"values"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Store saves and restores drafts keyed by session id.
type Store interface {
	Save(ctx context.Context, draft Draft) error
	Load(ctx context.Context, sessionID string) (Draft, error)
	List(ctx context.Context) ([]Draft, error)
	Delete(ctx context.Context, sessionID string) error
}

// FileStore keeps one JSON document per session under Dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("drafts: directory is required")
	}
	return &FileStore{dir: dir}, nil
}

// Save writes draft atomically, replacing any previous version.
func (s *FileStore) Save(ctx context.Context, draft Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(draft.SessionID)
	if err != nil {
		return err
	}
	if draft.UpdatedAt.IsZero() {
		draft.UpdatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("drafts: encode %s: %w", draft.SessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("drafts: create %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("drafts: save %s: %w", draft.SessionID, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("drafts: save %s: %w", draft.SessionID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("drafts: save %s: %w", draft.SessionID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("drafts: save %s: %w", draft.SessionID, err)
	}
	return nil
}

// Load reads the draft for sessionID.
func (s *FileStore) Load(ctx context.Context, sessionID string) (Draft, error) {
	if err := ctx.Err(); err != nil {
		return Draft{}, err
	}
	path, err := s.path(sessionID)
	if err != nil {
		return Draft{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Draft{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return Draft{}, fmt.Errorf("drafts: load %s: %w", sessionID, err)
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return Draft{}, fmt.Errorf("drafts: decode %s: %w", sessionID, err)
	}
	return draft, nil
}

// List returns every stored draft, most recently updated first.
func (s *FileStore) List(ctx context.Context) ([]Draft, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: list %s: %w", s.dir, err)
	}
	var out []Draft
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		draft, err := s.Load(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		out = append(out, draft)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes the draft for sessionID. Missing drafts are not an error.
func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("drafts: delete %s: %w", sessionID, err)
	}
	return nil
}

func (s *FileStore) path(sessionID string) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || strings.HasPrefix(sessionID, ".") {
		return "", fmt.Errorf("drafts: invalid session id %q", sessionID)
	}
	return filepath.Join(s.dir, sessionID+".json"), nil
}
