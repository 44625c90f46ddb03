// Package vaultstore adapts a content store to store per-user encrypted
// vault blobs.
package vaultstore

import (
	"errors"
	"fmt"

	"github.com/Philb37/ferris-vault-server/internal/contentstore"
)

var (
	// ErrNotFound indicates the user has no vault yet.
	ErrNotFound = errors.New("vault not found")

	// ErrPermissionDenied indicates the server process cannot access the vault file.
	ErrPermissionDenied = errors.New("vault permission denied")

	// ErrInternal wraps any other storage failure.
	ErrInternal = errors.New("vault store internal error")
)

// Store persists and retrieves vault blobs keyed by username.
type Store struct {
	blobs contentstore.Store
}

// New returns a Store backed by blobs.
func New(blobs contentstore.Store) *Store {
	return &Store{blobs: blobs}
}

// Retrieve returns the vault for username.
func (s *Store) Retrieve(username string) ([]byte, error) {
	content, err := s.blobs.Retrieve(username)
	if err != nil {
		return nil, fromContentStoreError(err)
	}

	return content, nil
}

// Save persists vault as the full content of username's vault, replacing
// any prior value.
func (s *Store) Save(username string, vault []byte) error {
	if err := s.blobs.Save(username, vault); err != nil {
		return fromContentStoreError(err)
	}

	return nil
}

func fromContentStoreError(err error) error {
	switch {
	case errors.Is(err, contentstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, contentstore.ErrPermissionDenied):
		return ErrPermissionDenied
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
