package contentstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Directory is a Store backed by a directory of files, one file per name.
// Saves are atomic: content is written to a temporary file in the same
// directory, permissioned, and renamed over the destination, so a reader
// never observes a partially written file.
type Directory struct {
	path string
}

// NewDirectory returns a Directory rooted at path. The directory is created
// if it does not already exist.
func NewDirectory(path string) (*Directory, error) {
	if path == "" {
		return nil, errors.New("contentstore: directory path must not be empty")
	}

	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("contentstore: create directory: %w", err)
	}

	return &Directory{path: path}, nil
}

// Save implements Store.
func (d *Directory) Save(name string, content []byte) error {
	dest := filepath.Join(d.path, name)

	tmp, err := os.CreateTemp(d.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("contentstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("contentstore: write temp file: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("contentstore: chmod temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("contentstore: sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("contentstore: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("contentstore: replace %s: %w", name, err)
	}

	return nil
}

// Retrieve implements Store.
func (d *Directory) Retrieve(name string) ([]byte, error) {
	f, err := os.Open(filepath.Join(d.path, name))
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, ErrNotFound
		case errors.Is(err, os.ErrPermission):
			return nil, ErrPermissionDenied
		default:
			return nil, fmt.Errorf("contentstore: open %s: %w", name, err)
		}
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("contentstore: read %s: %w", name, err)
	}

	return content, nil
}
