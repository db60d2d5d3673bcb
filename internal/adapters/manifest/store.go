// Package manifest persists the set of explicitly loaded extension
// packages so a server restart can restore them.
package manifest

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/quilldb/quill/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ManifestStore = (*Store)(nil)

// Store implements ports.ManifestStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]bool
}

// NewStore creates a ManifestStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read manifest")
	}

	if len(data) == 0 {
		return nil
	}

	var pkgs []string
	if err := json.Unmarshal(data, &pkgs); err != nil {
		return zerr.Wrap(err, "failed to unmarshal manifest")
	}
	for _, pkg := range pkgs {
		s.cache[pkg] = true
	}
	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkgs := make([]string, 0, len(s.cache))
	for pkg := range s.cache {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	data, err := json.MarshalIndent(pkgs, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal manifest")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for manifest")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write manifest")
	}
	return nil
}

// Packages returns the recorded package names, sorted.
func (s *Store) Packages() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pkgs := make([]string, 0, len(s.cache))
	for pkg := range s.cache {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

// Add records a package.
func (s *Store) Add(pkg string) error {
	s.mu.Lock()
	s.cache[pkg] = true
	s.mu.Unlock()

	return s.save()
}

// Remove drops a package.
func (s *Store) Remove(pkg string) error {
	s.mu.Lock()
	delete(s.cache, pkg)
	s.mu.Unlock()

	return s.save()
}
