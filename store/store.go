package store

import (
	"fmt"
	"os"
	"sync"
)

// Store owns a plugin's durable key-value tree and its single data file. The
// zero value is not usable; construct with New. Accessor methods are safe for
// concurrent use. Tree hands out the live map for bulk mutation and is meant
// for plugin hook code running between load and save.
type Store struct {
	mu     sync.RWMutex
	path   string
	format Format
	tree   map[string]any
}

// New creates a Store bound to path using the given save format. It fails
// with ErrUnknownFormat when no codec exists for format. No I/O happens until
// Load or Save is called.
func New(path string, format Format) (*Store, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	return &Store{path: path, format: format, tree: map[string]any{}}, nil
}

// Path returns the data file path.
func (s *Store) Path() string { return s.path }

// Format returns the save format.
func (s *Store) Format() Format { return s.format }

// Load reads and decodes the data file, replacing the in-memory tree. It
// returns an error satisfying errors.Is(err, ErrMissingFile) when the file
// does not exist and a *LoadError when the file cannot be read or decoded.
// The in-memory tree is left untouched on failure.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingFile, s.path)
		}
		return &LoadError{Path: s.path, Err: err}
	}

	tree := map[string]any{}
	if err := s.format.unmarshal(raw, &tree); err != nil {
		return &LoadError{Path: s.path, Err: err}
	}
	if tree == nil {
		tree = map[string]any{}
	}

	s.mu.Lock()
	s.tree = tree
	s.mu.Unlock()
	return nil
}

// Save encodes the in-memory tree and writes it to the data file. Failures
// are reported as *SaveError.
func (s *Store) Save() error {
	s.mu.RLock()
	raw, err := s.format.marshal(s.tree)
	s.mu.RUnlock()
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	return nil
}

// Reset discards the in-memory tree, truncates the data file and persists the
// now-empty tree. It is the recovery primitive used by the lifecycle
// controller when a load failed outside debug mode.
func (s *Store) Reset() error {
	s.mu.Lock()
	s.tree = map[string]any{}
	s.mu.Unlock()
	if err := os.WriteFile(s.path, nil, 0o644); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	return s.Save()
}

// Tree returns the live in-memory tree for direct mutation. Callers mutating
// the map concurrently with dispatch must hold the owning plugin's data lock.
func (s *Store) Tree() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tree[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree[key] = value
}

// Delete removes key from the tree.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tree, key)
}

// Len returns the number of top-level keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tree)
}
