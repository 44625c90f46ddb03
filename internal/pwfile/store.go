// Package pwfile adapts a content store to store OPAQUE password files.
//
// Retrieval failures are deliberately collapsed into a single error: a
// missing password file must be indistinguishable from a corrupted one or a
// permission error, otherwise a login attempt's error response would leak
// whether a username is registered.
package pwfile

import (
	"errors"

	"github.com/Philb37/ferris-vault-server/internal/contentstore"
)

// ErrRetrieve is returned for every Retrieve failure, regardless of cause.
var ErrRetrieve = errors.New("password file unavailable")

// Store persists and retrieves serialized OPAQUE password files keyed by
// username.
type Store struct {
	blobs contentstore.Store
}

// New returns a Store backed by blobs.
func New(blobs contentstore.Store) *Store {
	return &Store{blobs: blobs}
}

// Save persists the password file for username, replacing any prior value.
func (s *Store) Save(username string, passwordFile []byte) error {
	return s.blobs.Save(username, passwordFile)
}

// Retrieve returns the password file for username, or ErrRetrieve if it
// cannot be read for any reason.
func (s *Store) Retrieve(username string) ([]byte, error) {
	content, err := s.blobs.Retrieve(username)
	if err != nil {
		return nil, ErrRetrieve
	}

	return content, nil
}
