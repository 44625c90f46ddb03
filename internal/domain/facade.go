package domain

import (
	"errors"
	"sync"

	"github.com/Philb37/ferris-vault-server/internal/auth"
)

// Authenticator is the aPAKE engine and session table this Facade drives.
// It is satisfied by *auth.Authenticator.
type Authenticator interface {
	StartRegistration(username string, clientMessage []byte) ([]byte, error)
	FinishRegistration(username string, clientMessage []byte) error
	StartLogin(username string, clientMessage []byte) ([]byte, error)
	FinishLogin(username string, clientMessage []byte) error
	VerifyBearerToken(bearerToken string) bool
	VerifySignature(bearerToken, verb, uri, timestamp, signature string) (bool, error)
	VerifyRequestTimestamp(requestTimestamp string) (bool, error)
	UsernameFromSession(bearerToken string) (string, error)
}

// VaultStore persists and retrieves per-user vault blobs. It is satisfied
// by *vaultstore.Store.
type VaultStore interface {
	Retrieve(username string) ([]byte, error)
	Save(username string, vault []byte) error
}

// Facade is the single entry point the transport layer talks to. Every
// public operation takes the same coarse lock, so the domain behaves as if
// it ran on a single thread even though the transport layer may be
// concurrent.
type Facade struct {
	mu      sync.Mutex
	auth    Authenticator
	vaults  VaultStore
}

// New returns a Facade composing authenticator and vaults.
func New(authenticator Authenticator, vaults VaultStore) *Facade {
	return &Facade{auth: authenticator, vaults: vaults}
}

// StartServerRegistration answers a client's registration request.
func (f *Facade) StartServerRegistration(username string, clientMessage []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	response, err := f.auth.StartRegistration(username, clientMessage)
	if err != nil {
		return nil, fromAuthError(err)
	}

	return response, nil
}

// FinishServerRegistration completes registration and initializes an empty
// vault for the new user.
func (f *Facade) FinishServerRegistration(username string, clientMessage []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.auth.FinishRegistration(username, clientMessage); err != nil {
		return fromAuthError(err)
	}

	if err := f.vaults.Save(username, nil); err != nil {
		return internal(err.Error())
	}

	return nil
}

// StartServerLogin answers a client's login request.
func (f *Facade) StartServerLogin(username string, clientMessage []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	response, err := f.auth.StartLogin(username, clientMessage)
	if err != nil {
		return nil, fromAuthError(err)
	}

	return response, nil
}

// FinishServerLogin completes a login handshake, establishing a session.
func (f *Facade) FinishServerLogin(username string, clientMessage []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.auth.FinishLogin(username, clientMessage); err != nil {
		return fromAuthError(err)
	}

	return nil
}

// GetVault authenticates the request and returns the caller's vault.
func (f *Facade) GetVault(bearerToken, verb, uri, timestamp, signature string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	username, err := f.verifyRequestAndGetUsername(bearerToken, verb, uri, timestamp, signature)
	if err != nil {
		return nil, err
	}

	vault, err := f.vaults.Retrieve(username)
	if err != nil {
		return nil, internal(err.Error())
	}

	return vault, nil
}

// SaveVault authenticates the request and overwrites the caller's vault.
func (f *Facade) SaveVault(bearerToken, verb, uri, timestamp, signature string, vault []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	username, err := f.verifyRequestAndGetUsername(bearerToken, verb, uri, timestamp, signature)
	if err != nil {
		return err
	}

	if err := f.vaults.Save(username, vault); err != nil {
		return internal(err.Error())
	}

	return nil
}

func (f *Facade) verifyRequestAndGetUsername(bearerToken, verb, uri, timestamp, signature string) (string, error) {
	if !f.auth.VerifyBearerToken(bearerToken) {
		return "", forbidden(reasonInvalidBearerToken)
	}

	ok, err := f.auth.VerifySignature(bearerToken, verb, uri, timestamp, signature)
	if err != nil {
		return "", fromAuthError(err)
	}
	if !ok {
		return "", forbidden(reasonInvalidSignature)
	}

	ok, err = f.auth.VerifyRequestTimestamp(timestamp)
	if err != nil {
		return "", fromAuthError(err)
	}
	if !ok {
		return "", forbidden(reasonStaleRequest)
	}

	username, err := f.auth.UsernameFromSession(bearerToken)
	if err != nil {
		return "", fromAuthError(err)
	}

	return username, nil
}

func fromAuthError(err error) *Error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		if authErr.Kind == auth.KindPasswordFileRetrieve {
			return forbidden(authErr.Error())
		}
		return internal(authErr.Error())
	}

	return internal(err.Error())
}
