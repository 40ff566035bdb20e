// Package scratch manages the run-scoped directory tree that holds
// generated launchers, downloaded plugins and extracted archives.
//
// Every run gets its own directory named after a random UUID. Paths inside
// it are create-once: asking for a directory or file that already exists is
// an error rather than a silent overwrite.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrExists is returned when a create-once path is already present
var ErrExists = errors.New("scratch path already exists")

// Space is the scratch area for a single run
type Space struct {
	runID string
	root  string
}

// New creates a fresh run directory below base. An empty base uses the OS
// temporary directory.
func New(base string) (*Space, error) {
	if base == "" {
		base = filepath.Join(os.TempDir(), "protogen")
	}

	runID := uuid.New().String()
	root := filepath.Join(base, runID)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch base %s: %w", base, err)
	}
	if err := os.Mkdir(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch space %s: %w", root, err)
	}

	return &Space{runID: runID, root: root}, nil
}

// RunID identifies this run
func (s *Space) RunID() string {
	return s.runID
}

// Root is the run directory
func (s *Space) Root() string {
	return s.root
}

// Path joins parts below the run directory without creating anything
func (s *Space) Path(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

// Dir creates root/parts... and returns it. Parent segments may already
// exist; the final segment must not.
func (s *Space) Dir(parts ...string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("scratch directory needs at least one path segment")
	}

	dir := s.Path(parts...)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dir), err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, dir)
		}
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// Remove deletes the whole run directory
func (s *Space) Remove() error {
	return os.RemoveAll(s.root)
}

// CreateFile writes data to path, failing if path already exists
func CreateFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// CreateFrom copies r into a new file at path, failing if path already exists
func CreateFrom(path string, r io.Reader, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
