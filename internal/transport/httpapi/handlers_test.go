package httpapi_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Philb37/ferris-vault-server/internal/domain"
	"github.com/Philb37/ferris-vault-server/internal/transport/httpapi"
)

type fakeFacade struct {
	getVaultErr error
	vault       []byte
}

func (f *fakeFacade) StartServerRegistration(_ string, _ []byte) ([]byte, error) {
	return []byte{1, 2, 3}, nil
}

func (f *fakeFacade) FinishServerRegistration(_ string, _ []byte) error {
	return nil
}

func (f *fakeFacade) StartServerLogin(_ string, _ []byte) ([]byte, error) {
	return []byte{4, 5, 6}, nil
}

func (f *fakeFacade) FinishServerLogin(_ string, _ []byte) error {
	return nil
}

func (f *fakeFacade) GetVault(_, _, _, _, _ string) ([]byte, error) {
	if f.getVaultErr != nil {
		return nil, f.getVaultErr
	}
	return f.vault, nil
}

func (f *fakeFacade) SaveVault(_, _, _, _, _ string, _ []byte) error {
	return nil
}

func newTestRouter(f *fakeFacade) http.Handler {
	return httpapi.NewRouter(f, zerolog.Nop())
}

func TestRegistrationStartRequiresUsernameHeader(t *testing.T) {
	router := newTestRouter(&fakeFacade{})

	req := httptest.NewRequest(http.MethodPost, "/opaque/registration/start", strings.NewReader("body"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationStartReturnsResponseBytes(t *testing.T) {
	router := newTestRouter(&fakeFacade{})

	req := httptest.NewRequest(http.MethodPost, "/opaque/registration/start", strings.NewReader("body"))
	req.Header.Set("X-Username", "alice")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}

func TestGetVaultRequiresAuthorizationHeader(t *testing.T) {
	router := newTestRouter(&fakeFacade{})

	req := httptest.NewRequest(http.MethodGet, "/vault", nil)
	req.Header.Set("X-Timestamp", "1000")
	req.Header.Set("X-Signature", "abc")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetVaultReturnsVaultOnSuccess(t *testing.T) {
	router := newTestRouter(&fakeFacade{vault: []byte("my-vault")})

	req := httptest.NewRequest(http.MethodGet, "/vault", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	req.Header.Set("Host", "localhost")
	req.Header.Set("X-Timestamp", "1000")
	req.Header.Set("X-Signature", "abc")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "my-vault", rec.Body.String())
}

func TestGetVaultMapsForbiddenToStatus403(t *testing.T) {
	router := newTestRouter(&fakeFacade{getVaultErr: &domain.Error{Kind: domain.Forbidden, Reason: "invalid bearer token"}})

	req := httptest.NewRequest(http.MethodGet, "/vault", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	req.Header.Set("Host", "localhost")
	req.Header.Set("X-Timestamp", "1000")
	req.Header.Set("X-Signature", "abc")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetVaultMapsInternalToStatus500(t *testing.T) {
	router := newTestRouter(&fakeFacade{getVaultErr: &domain.Error{Kind: domain.Internal, Reason: "disk failure"}})

	req := httptest.NewRequest(http.MethodGet, "/vault", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	req.Header.Set("Host", "localhost")
	req.Header.Set("X-Timestamp", "1000")
	req.Header.Set("X-Signature", "abc")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
