// Package storage provides sandboxed file operations for convertd.
// All file operations are restricted to configured directories to prevent
// path traversal between the HTTP layer and the filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned by Save when the input exceeds the size cap.
var ErrTooLarge = errors.New("file exceeds maximum size")

// Sandbox provides sandboxed file operations within a base directory.
// Paths handed in by callers are always relative; anything resolving outside
// the base directory is rejected.
type Sandbox struct {
	baseDir string
}

// NewSandbox creates a new Sandbox rooted at the given base directory,
// creating it if necessary.
func NewSandbox(baseDir string) (*Sandbox, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0750); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	return &Sandbox{baseDir: absPath}, nil
}

// BaseDir returns the absolute path to the sandbox base directory.
func (s *Sandbox) BaseDir() string {
	return s.baseDir
}

// ResolvePath resolves a relative path within the sandbox. Returns an error
// if the path is absolute or would escape the sandbox.
func (s *Sandbox) ResolvePath(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("path escapes sandbox: %s (absolute paths not allowed)", relativePath)
	}

	cleanPath := filepath.Clean(relativePath)
	fullPath := filepath.Join(s.baseDir, cleanPath)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("getting absolute path: %w", err)
	}

	if !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) && absPath != s.baseDir {
		return "", fmt.Errorf("path escapes sandbox: %s", relativePath)
	}

	return absPath, nil
}

// Exists checks if a path exists within the sandbox.
func (s *Sandbox) Exists(relativePath string) (bool, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking path: %w", err)
	}
	return true, nil
}

// Size returns the size in bytes of a file within the sandbox.
func (s *Sandbox) Size(relativePath string) (int64, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("checking path: %w", err)
	}
	return info.Size(), nil
}

// Save streams data to a file within the sandbox, limited to maxBytes when
// maxBytes is positive. Returns the number of bytes written.
func (s *Sandbox) Save(relativePath string, r io.Reader, maxBytes int64) (int64, error) {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0640)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}

	n, err := io.Copy(f, src)
	if err != nil {
		return n, fmt.Errorf("writing file: %w", err)
	}
	if maxBytes > 0 && n > maxBytes {
		os.Remove(path)
		return n, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxBytes)
	}
	return n, nil
}

// Remove deletes a file within the sandbox. Missing files are not an error.
func (s *Sandbox) Remove(relativePath string) error {
	path, err := s.ResolvePath(relativePath)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

// List returns the names of regular files directly under the sandbox root.
func (s *Sandbox) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
