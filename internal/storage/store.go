package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrInvalidName = errors.New("invalid name")

// Store is the download base directory. All job folders live directly under it.
type Store struct {
	fs      afero.Fs
	baseDir string
}

// NewStore creates a Store rooted at baseDir on fs.
func NewStore(fs afero.Fs, baseDir string) *Store {
	return &Store{fs: fs, baseDir: filepath.Clean(baseDir)}
}

// NewOSStore creates a Store on the local filesystem.
func NewOSStore(baseDir string) *Store {
	return NewStore(afero.NewOsFs(), baseDir)
}

// Init makes sure the base directory exists.
func (s *Store) Init() error {
	if err := s.fs.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory %s: %w", s.baseDir, err)
	}
	return nil
}

// Fs exposes the underlying filesystem (used for static serving).
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// BaseDir returns the download base directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Path resolves a direct child of the base directory. name must be a single
// path element.
func (s *Store) Path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.baseDir, name), nil
}

// EnsureDir creates a folder under the base directory and returns its path.
func (s *Store) EnsureDir(name string) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return path, nil
}

// WriteStream creates dir/name and lets write fill it. A partially written
// file is removed when write fails.
func (s *Store) WriteStream(dir, name string, write func(w io.Writer) (int64, error)) (int64, error) {
	if !validName(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(dir, name)

	file, err := s.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	n, werr := write(file)
	cerr := file.Close()
	if werr == nil && cerr != nil {
		werr = fmt.Errorf("failed to close file %s: %w", path, cerr)
	}
	if werr != nil {
		_ = s.fs.Remove(path)
		return n, werr
	}
	return n, nil
}

// ReadDir lists the entries of a directory.
func (s *Store) ReadDir(path string) ([]os.FileInfo, error) {
	return afero.ReadDir(s.fs, path)
}

// Stat returns file info for path.
func (s *Store) Stat(path string) (os.FileInfo, error) {
	return s.fs.Stat(path)
}

// Exists reports whether path exists.
func (s *Store) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Open opens a file for reading.
func (s *Store) Open(path string) (afero.File, error) {
	return s.fs.Open(path)
}

// RemoveAll deletes a folder tree under the base directory.
func (s *Store) RemoveAll(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
