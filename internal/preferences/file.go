package preferences

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage persists preference rules as a JSON file.
type FileStorage struct {
	path string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a file-backed storage. A leading ~/ expands to the
// user's home directory.
func NewFileStorage(path string) (*FileStorage, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating preferences directory: %w", err)
	}
	return &FileStorage{path: path}, nil
}

// Load reads the stored rules. A missing file yields empty rules.
func (f *FileStorage) Load() (Rules, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Rules{}, nil
		}
		return Rules{}, fmt.Errorf("reading preferences: %w", err)
	}
	var r Rules
	if err := json.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parsing preferences: %w", err)
	}
	return r, nil
}

// Save writes the rules to disk.
func (f *FileStorage) Save(r Rules) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// StaticStorage serves fixed rules, for configs that inline preferences.
type StaticStorage struct {
	Rules Rules
}

var _ Storage = (*StaticStorage)(nil)

// Load returns the fixed rules.
func (s *StaticStorage) Load() (Rules, error) { return s.Rules, nil }

// Save replaces the fixed rules.
func (s *StaticStorage) Save(r Rules) error {
	s.Rules = r
	return nil
}
