// Package filestore persists a snapvault document as a single YAML file.
//
// The nested Root on disk is the source of truth. On load the tree is
// flattened into an identifier-indexed cache for fast lookup; the cache is
// derived state and is rebuilt whenever the tree changes shape. Writes
// replace the whole file atomically, so readers observe either the complete
// old document or the complete new one, never a partial write.
//
// A Store is single-process and performs no internal locking; callers must
// serialize concurrent access to one instance. Across processes the only
// guarantee is the atomicity of the final rename: two writers racing a
// load-modify-store cycle can silently lose one writer's update.
package filestore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/beamtime/snapvault/pkg/backend"
	"github.com/beamtime/snapvault/pkg/model"
)

// Store is a file-backed Backend holding one document at a fixed path.
type Store struct {
	path  string
	root  *model.Root
	cache map[uuid.UUID]model.Entry
	links map[uuid.UUID]map[uuid.UUID]struct{}
}

var _ backend.Backend = (*Store)(nil)

// New returns a Store for the document at path. Nothing is read until the
// first operation; a missing file is initialized on demand.
func New(path string) *Store {
	s := &Store{path: path}
	s.Reset()
	return s
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Reset drops the loaded root together with both derived caches. The next
// operation reloads from disk.
func (s *Store) Reset() {
	s.root = nil
	s.cache = make(map[uuid.UUID]model.Entry)
	s.links = make(map[uuid.UUID]map[uuid.UUID]struct{})
}

// Root loads the document if necessary and returns the nested tree.
// Read-only: no write-back happens.
func (s *Store) Root() (*model.Root, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	return s.root, nil
}

// Initialize creates a new, empty, valid document at the configured path.
// Refuses to overwrite a non-empty file.
func (s *Store) Initialize() error {
	if info, err := os.Stat(s.path); err == nil && info.Size() > 0 {
		return fmt.Errorf("filestore: %s is not empty: %w", s.path, backend.ErrAlreadyExists)
	}
	if s.root == nil {
		s.root = model.NewRoot()
	}
	return s.store()
}

// ensureLoaded lazily loads the document, initializing a fresh one when the
// file does not exist yet, and flattens it into the caches.
func (s *Store) ensureLoaded() error {
	if s.root != nil {
		return nil
	}
	root, err := s.load()
	if errors.Is(err, backend.ErrNotFound) {
		slog.Debug("filestore: initializing new database", "path", s.path)
		if err := s.Initialize(); err != nil {
			return err
		}
		root, err = s.load()
	}
	if err != nil {
		return err
	}
	s.root = root
	s.flattenAll()
	return nil
}

// load reads and deserializes the nested Root from disk.
func (s *Store) load() (*model.Root, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("filestore: open %s: %w", s.path, backend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	var root model.Root
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w", s.path, err)
	}
	return &root, nil
}

// store serializes the held root and atomically replaces the target file.
// The document is first written to a uniquely named temporary file in the
// same directory, then renamed over the target in a single operation; on
// any failure the temporary file is removed and the target left untouched.
func (s *Store) store() error {
	raw, err := yaml.Marshal(s.root)
	if err != nil {
		return fmt.Errorf("filestore: serialize root: %w", err)
	}
	tmp := s.tempPath()
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("filestore: write temp file: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("filestore: copy permissions: %w", err)
		}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("filestore: atomic rename %s: %w", s.path, err)
	}
	return nil
}

// tempPath names a temporary sibling of the target. The random token keeps
// concurrent writers from clobbering each other's temp files.
func (s *Store) tempPath() string {
	name := "_" + uuid.NewString()[:8] + "_" + filepath.Base(s.path)
	return filepath.Join(filepath.Dir(s.path), name)
}
