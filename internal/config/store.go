package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fennwick/pageturner/internal/errors"
)

// ErrUnknownTemplate reports a template name with no saved entry.
func ErrUnknownTemplate(name string) error {
	return errors.Newf(errors.CodeInvalidConfig, "unknown template %q", name)
}

// Store is the persisted shape: the most recently used config plus named
// templates.
type Store struct {
	Recent    App            `json:"recent"`
	Templates map[string]App `json:"templates"`
}

// Repository persists configuration and templates to the filesystem.
type Repository struct {
	Path string
}

// NewRepository returns a repository rooted at the default config path unless
// overridden.
func NewRepository(path string) *Repository {
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".config", "pageturner", "config.json")
	}
	return &Repository{Path: path}
}

// Load reads the store, returning defaults when no file exists yet.
func (r *Repository) Load() (*Store, error) {
	data, err := os.ReadFile(r.Path)
	if os.IsNotExist(err) {
		return &Store{Recent: Default(), Templates: map[string]App{}}, nil
	}
	if err != nil {
		return nil, err
	}
	store := &Store{Recent: Default()}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, err
	}
	if store.Templates == nil {
		store.Templates = map[string]App{}
	}
	return store, nil
}

// Save writes the store atomically via a temp file rename.
func (r *Repository) Save(store *Store) error {
	if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.Path)
}

// LoadRecent returns the most recently used config.
func (r *Repository) LoadRecent() (App, error) {
	store, err := r.Load()
	if err != nil {
		return App{}, err
	}
	return store.Recent, nil
}

// SaveRecent records cfg as the most recently used config.
func (r *Repository) SaveRecent(cfg App) error {
	store, err := r.Load()
	if err != nil {
		return err
	}
	store.Recent = cfg
	return r.Save(store)
}

// SaveTemplate registers a named template.
func (r *Repository) SaveTemplate(name string, cfg App) error {
	store, err := r.Load()
	if err != nil {
		return err
	}
	store.Templates[name] = cfg
	return r.Save(store)
}

// DeleteTemplate removes a named template. Deleting a missing template is a
// no-op.
func (r *Repository) DeleteTemplate(name string) error {
	store, err := r.Load()
	if err != nil {
		return err
	}
	delete(store.Templates, name)
	return r.Save(store)
}

// ListTemplates returns the registered templates.
func (r *Repository) ListTemplates() (map[string]App, error) {
	store, err := r.Load()
	if err != nil {
		return nil, err
	}
	return store.Templates, nil
}
