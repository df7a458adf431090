// flat-file read/write scoped to one configured root directory
package filestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEscapesRoot marks a request name whose resolved path leaves the root.
// Callers serve it exactly like a missing file.
var ErrEscapesRoot = errors.New("path escapes store root")

// Store resolves request-supplied names to paths under a fixed root.
// The root is set once at startup and never changes.
type Store struct {
	root string
}

// New returns a store rooted at dir. The directory must exist.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store root %s is not a directory", abs)
	}
	return &Store{root: abs}, nil
}

// Root returns the configured root directory.
func (s *Store) Root() string {
	return s.root
}

// resolve canonicalizes the joined path and rejects anything that lands
// outside the root. The name comes straight off the wire, ".." segments
// must not reach the filesystem.
func (s *Store) resolve(name string) (string, error) {
	p := filepath.Join(s.root, name)
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrEscapesRoot
	}
	return p, nil
}

// Read loads the whole file into memory together with its content type.
func (s *Store) Read(name string) ([]byte, string, error) {
	p, err := s.resolve(name)
	if err != nil {
		return nil, "", err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", name, err)
	}
	return b, TypeOf(name), nil
}

// Write creates or replaces the named file with body.
// The content lands in a temp file first and is renamed into place, so
// concurrent writers race on whole files: last write wins, a reader never
// sees an interleaved partial body.
func (s *Store) Write(name string, body []byte) error {
	p, err := s.resolve(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".flatserv-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
