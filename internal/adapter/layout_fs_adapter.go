// Package adapter contains filesystem and persistence adapters for ftqmap.
package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// LayoutFSAdapter abstracts the filesystem operations the domain layer needs
// to verify a rawdata tree and to build subset trees. It hides direct `os`
// access so the workflow logic can be tested without touching the disk.
type LayoutFSAdapter interface {
	// IsFile reports whether path exists and is a regular file. Symlinks are
	// followed.
	IsFile(path m.Path) bool

	// IsDir reports whether path exists and is a directory.
	IsDir(path m.Path) bool

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path m.Path) error

	// Symlink creates link pointing at target, creating parent directories.
	// An existing link that already points at target is left alone.
	Symlink(target, link m.Path) error

	// ReadFile returns the content of a file.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalLayoutFSAdapter implements LayoutFSAdapter on the local filesystem.
type LocalLayoutFSAdapter struct{}

// NewLocalLayoutFSAdapter constructs a LocalLayoutFSAdapter.
func NewLocalLayoutFSAdapter() *LocalLayoutFSAdapter {
	return &LocalLayoutFSAdapter{}
}

// IsFile reports whether path is an existing regular file.
func (a *LocalLayoutFSAdapter) IsFile(path m.Path) bool {
	info, err := os.Stat(string(path))
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// IsDir reports whether path is an existing directory.
func (a *LocalLayoutFSAdapter) IsDir(path m.Path) bool {
	info, err := os.Stat(string(path))
	if err != nil {
		return false
	}

	return info.IsDir()
}

// MkdirAll creates path and any missing parents.
func (a *LocalLayoutFSAdapter) MkdirAll(path m.Path) error {
	return os.MkdirAll(string(path), 0o750)
}

// Symlink links link to target.
func (a *LocalLayoutFSAdapter) Symlink(target, link m.Path) error {
	if err := os.MkdirAll(filepath.Dir(string(link)), 0o750); err != nil {
		return err
	}

	err := os.Symlink(string(target), string(link))
	if err == nil {
		return nil
	}

	if !errors.Is(err, os.ErrExist) {
		return err
	}

	current, readErr := os.Readlink(string(link))
	if readErr != nil {
		return fmt.Errorf("%s exists and is not a symlink: %w", link, err)
	}

	if current != string(target) {
		return fmt.Errorf("%s already links to %s: %w", link, current, err)
	}

	return nil
}

// ReadFile returns the content of path.
func (a *LocalLayoutFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	// #nosec G304 - sidecar paths are built from the input tree and the mapping
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalLayoutFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// JoinPath joins path elements into a single path.
func (a *LocalLayoutFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
