package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store keeps the wizards parsed from schema documents. It is safe for
// concurrent readers when treated as immutable after construction.
type Store struct {
	wizards map[string]*Wizard
}

// LoadOption customises loading.
type LoadOption func(*loadOptions)

type loadOptions struct {
	strict    bool
	validator *DocumentValidator
}

// WithStrict rejects documents that do not match the embedded JSON Schema,
// condition shapes the evaluator would fail open on, and conditions that
// reference undeclared fields. Lenient loading is the default.
func WithStrict(strict bool) LoadOption {
	return func(o *loadOptions) {
		o.strict = strict
	}
}

// WithDocumentValidator reuses a compiled validator across loads.
func WithDocumentValidator(v *DocumentValidator) LoadOption {
	return func(o *loadOptions) {
		o.validator = v
	}
}

// LoadFS walks fsys and parses every JSON/YAML file as one wizard. When fsys
// is nil or holds no schema files, the returned store is empty.
func LoadFS(fsys fs.FS, options ...LoadOption) (*Store, error) {
	store := &Store{wizards: make(map[string]*Wizard)}
	if fsys == nil {
		return store, nil
	}

	cfg, err := resolveLoadOptions(options)
	if err != nil {
		return nil, err
	}

	err = fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		wizard, err := parseWizard(data, path, cfg)
		if err != nil {
			return err
		}
		if _, exists := store.wizards[wizard.ID]; exists {
			return fmt.Errorf("schema: duplicate wizard %q (file %s)", wizard.ID, path)
		}
		store.wizards[wizard.ID] = wizard
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadDir is LoadFS over a directory on disk.
func LoadDir(dir string, options ...LoadOption) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema: %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), options...)
}

// LoadFile parses a single schema document from disk.
func LoadFile(path string, options ...LoadOption) (*Wizard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path, options...)
}

// Parse decodes a wizard document. The source name selects the decoder by
// extension (.json or .yaml/.yml); anything else is tried as JSON, then YAML.
func Parse(data []byte, source string, options ...LoadOption) (*Wizard, error) {
	cfg, err := resolveLoadOptions(options)
	if err != nil {
		return nil, err
	}
	return parseWizard(data, source, cfg)
}

// Wizard returns the wizard registered under id.
func (s *Store) Wizard(id string) (*Wizard, bool) {
	if s == nil {
		return nil, false
	}
	w, ok := s.wizards[id]
	return w, ok
}

// IDs returns the registered wizard ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.wizards))
	for id := range s.wizards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any wizards.
func (s *Store) Empty() bool {
	return s == nil || len(s.wizards) == 0
}

func resolveLoadOptions(options []LoadOption) (loadOptions, error) {
	cfg := loadOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.strict && cfg.validator == nil {
		validator, err := NewDocumentValidator()
		if err != nil {
			return loadOptions{}, err
		}
		cfg.validator = validator
	}
	return cfg, nil
}

func parseWizard(data []byte, source string, cfg loadOptions) (*Wizard, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("schema: file %s is empty", source)
	}

	if cfg.strict {
		if issues := cfg.validator.ValidateBytes(data, source); len(issues) > 0 {
			return nil, &DocumentError{Source: source, Issues: issues}
		}
	}

	wizard, err := decode(data, source)
	if err != nil {
		return nil, err
	}
	wizard.Source = source
	if strings.TrimSpace(wizard.ID) == "" {
		wizard.ID = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	if err := wizard.Validate(); err != nil {
		return nil, err
	}
	if cfg.strict {
		if err := wizard.CheckConditions(); err != nil {
			return nil, err
		}
	}
	return &wizard, nil
}

func decode(data []byte, source string) (Wizard, error) {
	var wizard Wizard
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json":
		if err := json.Unmarshal(data, &wizard); err != nil {
			return Wizard{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return wizard, nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &wizard); err != nil {
			return Wizard{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return wizard, nil
	}

	if err := json.Unmarshal(data, &wizard); err == nil {
		return wizard, nil
	}
	wizard = Wizard{}
	if err := yaml.Unmarshal(data, &wizard); err != nil {
		return Wizard{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return wizard, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
