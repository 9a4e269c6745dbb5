// Package storage persists the snippet library and remembered placeholder
// values under the snipline data directory.
package storage

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/snipline/snipline/internal/errors"
	"github.com/snipline/snipline/internal/models"
)

const (
	libraryFile = "snippets.yaml"
	dirPerm     = 0755
	filePerm    = 0644
)

// Dir returns the data directory: $SNIPLINE_DIR when set, ~/.snipline
// otherwise.
func Dir() string {
	if dir := os.Getenv("SNIPLINE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".snipline"
	}
	return filepath.Join(home, ".snipline")
}

// Store is the file-backed snippet library. The library is replaced
// wholesale on every change; readers get a snapshot, never shared state.
type Store struct {
	mu       sync.RWMutex
	path     string
	lib      models.Library
	onChange []func(models.Library)
}

// NewStore returns a store over dir/snippets.yaml with an empty library.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, libraryFile)}
}

// Path returns the library file path.
func (s *Store) Path() string {
	return s.path
}

// OnChange registers a callback fired with the new library snapshot after
// every successful Load or Replace.
func (s *Store) OnChange(fn func(models.Library)) {
	s.onChange = append(s.onChange, fn)
}

// Load reads the library file. A missing file yields an empty library; a
// file that exists but does not parse is an error, and the previous library
// stays in effect.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.replace(models.Library{Snippets: map[string]models.Body{}})
		return nil
	}
	if err != nil {
		return apperrors.StorageError("read library", err)
	}

	var lib models.Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted, "Library file does not parse")
	}
	if lib.Snippets == nil {
		lib.Snippets = map[string]models.Body{}
	}
	s.replace(lib)
	return nil
}

// Library returns the current snapshot.
func (s *Store) Library() models.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lib
}

// Replace persists a new library and notifies listeners. The write goes
// through a temp file and rename so a crash never leaves a half-written
// library behind.
func (s *Store) Replace(lib models.Library) error {
	data, err := yaml.Marshal(lib)
	if err != nil {
		return apperrors.StorageError("encode library", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return apperrors.StorageError("write library", err)
	}
	s.replace(lib)
	return nil
}

func (s *Store) replace(lib models.Library) {
	s.mu.Lock()
	s.lib = lib
	s.mu.Unlock()
	for _, fn := range s.onChange {
		fn(lib)
	}
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
