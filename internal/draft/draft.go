// Package draft persists the full form value tree between runs. The store
// is best-effort: missing or corrupted data reads as absent, never as an
// error the caller has to unwind.
package draft

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zgloszenie/accident-form/internal/model"
)

const fileName = "draft.json"

// Store keeps a single draft document under dir.
type Store struct {
	dir string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string { return filepath.Join(s.dir, fileName) }

// Load returns the saved draft, or nil when none exists or the file does
// not parse.
func (s *Store) Load() *model.FormValues {
	raw, err := os.ReadFile(s.path())
	if err != nil {
		return nil
	}
	var v model.FormValues
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Save writes the draft, creating the directory on first use.
func (s *Store) Save(v model.FormValues) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	f, err := os.Create(s.path())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Clear removes the draft; a missing file is fine.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
