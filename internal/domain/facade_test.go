package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Philb37/ferris-vault-server/internal/auth"
	"github.com/Philb37/ferris-vault-server/internal/domain"
)

type fakeAuthenticator struct {
	bearerOK       bool
	signatureOK    bool
	signatureErr   error
	timestampOK    bool
	timestampErr   error
	username       string
	usernameErr    error
	startLoginErr  error
	finishLoginErr error
	startRegErr    error
	finishRegErr   error
}

func newFakeAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{
		bearerOK:    true,
		signatureOK: true,
		timestampOK: true,
		username:    "username",
	}
}

func (f *fakeAuthenticator) StartRegistration(_ string, _ []byte) ([]byte, error) {
	if f.startRegErr != nil {
		return nil, f.startRegErr
	}
	return []byte{42}, nil
}

func (f *fakeAuthenticator) FinishRegistration(_ string, _ []byte) error {
	return f.finishRegErr
}

func (f *fakeAuthenticator) StartLogin(_ string, _ []byte) ([]byte, error) {
	if f.startLoginErr != nil {
		return nil, f.startLoginErr
	}
	return []byte{42}, nil
}

func (f *fakeAuthenticator) FinishLogin(_ string, _ []byte) error {
	return f.finishLoginErr
}

func (f *fakeAuthenticator) VerifyBearerToken(_ string) bool {
	return f.bearerOK
}

func (f *fakeAuthenticator) VerifySignature(_, _, _, _, _ string) (bool, error) {
	return f.signatureOK, f.signatureErr
}

func (f *fakeAuthenticator) VerifyRequestTimestamp(_ string) (bool, error) {
	return f.timestampOK, f.timestampErr
}

func (f *fakeAuthenticator) UsernameFromSession(_ string) (string, error) {
	return f.username, f.usernameErr
}

type fakeVaultStore struct {
	content    []byte
	retrieveErr error
	saveErr    error
	savedAs    []byte
}

func newFakeVaultStore() *fakeVaultStore {
	return &fakeVaultStore{content: []byte{42}}
}

func (f *fakeVaultStore) Retrieve(_ string) ([]byte, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.content, nil
}

func (f *fakeVaultStore) Save(_ string, vault []byte) error {
	f.savedAs = vault
	return f.saveErr
}

func TestStartServerRegistration(t *testing.T) {
	facade := domain.New(newFakeAuthenticator(), newFakeVaultStore())

	result, err := facade.StartServerRegistration("username", []byte{42})
	require.NoError(t, err)
	require.Equal(t, []byte{42}, result)
}

func TestFinishServerRegistrationInitializesEmptyVault(t *testing.T) {
	vaults := newFakeVaultStore()
	facade := domain.New(newFakeAuthenticator(), vaults)

	err := facade.FinishServerRegistration("username", []byte{42})
	require.NoError(t, err)
	require.Empty(t, vaults.savedAs)
}

func TestStartServerLogin(t *testing.T) {
	facade := domain.New(newFakeAuthenticator(), newFakeVaultStore())

	result, err := facade.StartServerLogin("username", []byte{42})
	require.NoError(t, err)
	require.Equal(t, []byte{42}, result)
}

func TestFinishServerLogin(t *testing.T) {
	facade := domain.New(newFakeAuthenticator(), newFakeVaultStore())

	err := facade.FinishServerLogin("username", []byte{42})
	require.NoError(t, err)
}

func TestGetVault(t *testing.T) {
	facade := domain.New(newFakeAuthenticator(), newFakeVaultStore())

	vault, err := facade.GetVault("bearer ...", "GET", "http://localhost", "42", "signature")
	require.NoError(t, err)
	require.Equal(t, []byte{42}, vault)
}

func TestSaveVault(t *testing.T) {
	vaults := newFakeVaultStore()
	facade := domain.New(newFakeAuthenticator(), vaults)

	err := facade.SaveVault("bearer ...", "GET", "http://localhost", "42", "signature", []byte{42})
	require.NoError(t, err)
	require.Equal(t, []byte{42}, vaults.savedAs)
}

func TestGetVaultRejectsInvalidBearerToken(t *testing.T) {
	authn := newFakeAuthenticator()
	authn.bearerOK = false
	facade := domain.New(authn, newFakeVaultStore())

	_, err := facade.GetVault("bad-token", "GET", "http://localhost", "42", "signature")
	require.Error(t, err)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.Forbidden, domainErr.Kind)
}

func TestGetVaultRejectsInvalidSignature(t *testing.T) {
	authn := newFakeAuthenticator()
	authn.signatureOK = false
	facade := domain.New(authn, newFakeVaultStore())

	_, err := facade.GetVault("bearer ...", "GET", "http://localhost", "42", "bad-signature")
	require.Error(t, err)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.Forbidden, domainErr.Kind)
}

func TestGetVaultRejectsStaleTimestamp(t *testing.T) {
	authn := newFakeAuthenticator()
	authn.timestampOK = false
	facade := domain.New(authn, newFakeVaultStore())

	_, err := facade.GetVault("bearer ...", "GET", "http://localhost", "42", "signature")
	require.Error(t, err)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.Forbidden, domainErr.Kind)
}

func TestStartServerLoginMapsPasswordFileRetrieveToForbidden(t *testing.T) {
	authn := newFakeAuthenticator()
	authn.startLoginErr = &auth.Error{Kind: auth.KindPasswordFileRetrieve, Err: errors.New("not found")}
	facade := domain.New(authn, newFakeVaultStore())

	_, err := facade.StartServerLogin("username", []byte{42})
	require.Error(t, err)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.Forbidden, domainErr.Kind)
}

func TestFinishServerLoginMapsOtherAuthErrorsToInternal(t *testing.T) {
	authn := newFakeAuthenticator()
	authn.finishLoginErr = &auth.Error{Kind: auth.KindLogin, Err: errors.New("bad mac")}
	facade := domain.New(authn, newFakeVaultStore())

	err := facade.FinishServerLogin("username", []byte{42})
	require.Error(t, err)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.Internal, domainErr.Kind)
}

func TestGetVaultMapsVaultStoreErrorsToInternal(t *testing.T) {
	vaults := newFakeVaultStore()
	vaults.retrieveErr = errors.New("disk failure")
	facade := domain.New(newFakeAuthenticator(), vaults)

	_, err := facade.GetVault("bearer ...", "GET", "http://localhost", "42", "signature")
	require.Error(t, err)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.Internal, domainErr.Kind)
}
