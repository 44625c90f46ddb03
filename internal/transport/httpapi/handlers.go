package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Philb37/ferris-vault-server/internal/domain"
)

const (
	headerAuthorization = "Authorization"
	headerXTimestamp    = "X-Timestamp"
	headerXSignature    = "X-Signature"
	headerXUsername     = "X-Username"
	headerHost          = "Host"
	bearerPrefix        = "Bearer "

	vaultPath = "/vault"
)

type handlers struct {
	facade Facade
}

func (h *handlers) registrationStart(w http.ResponseWriter, r *http.Request) {
	username, body, ok := readOpaqueRequest(w, r)
	if !ok {
		return
	}

	response, err := h.facade.StartServerRegistration(username, body)
	writeDomainResult(w, response, err)
}

func (h *handlers) registrationFinish(w http.ResponseWriter, r *http.Request) {
	username, body, ok := readOpaqueRequest(w, r)
	if !ok {
		return
	}

	err := h.facade.FinishServerRegistration(username, body)
	writeDomainResult(w, nil, err)
}

func (h *handlers) loginStart(w http.ResponseWriter, r *http.Request) {
	username, body, ok := readOpaqueRequest(w, r)
	if !ok {
		return
	}

	response, err := h.facade.StartServerLogin(username, body)
	writeDomainResult(w, response, err)
}

func (h *handlers) loginFinish(w http.ResponseWriter, r *http.Request) {
	username, body, ok := readOpaqueRequest(w, r)
	if !ok {
		return
	}

	err := h.facade.FinishServerLogin(username, body)
	writeDomainResult(w, nil, err)
}

func (h *handlers) getVault(w http.ResponseWriter, r *http.Request) {
	req, ok := readVaultRequest(w, r)
	if !ok {
		return
	}

	vault, err := h.facade.GetVault(req.bearerToken, http.MethodGet, req.uri, req.timestamp, req.signature)
	writeDomainResult(w, vault, err)
}

func (h *handlers) saveVault(w http.ResponseWriter, r *http.Request) {
	req, ok := readVaultRequest(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	err = h.facade.SaveVault(req.bearerToken, http.MethodPost, req.uri, req.timestamp, req.signature, body)
	writeDomainResult(w, nil, err)
}

func readOpaqueRequest(w http.ResponseWriter, r *http.Request) (username string, body []byte, ok bool) {
	username = r.Header.Get(headerXUsername)
	if username == "" {
		http.Error(w, "missing "+headerXUsername+" header", http.StatusBadRequest)
		return "", nil, false
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return "", nil, false
	}

	return username, body, true
}

type vaultRequest struct {
	bearerToken string
	uri         string
	timestamp   string
	signature   string
}

func readVaultRequest(w http.ResponseWriter, r *http.Request) (vaultRequest, bool) {
	authorization := r.Header.Get(headerAuthorization)
	if !strings.HasPrefix(authorization, bearerPrefix) {
		http.Error(w, "missing or malformed "+headerAuthorization+" header", http.StatusBadRequest)
		return vaultRequest{}, false
	}

	host := r.Header.Get(headerHost)
	if host == "" {
		host = r.Host
	}
	if host == "" {
		http.Error(w, "missing "+headerHost+" header", http.StatusBadRequest)
		return vaultRequest{}, false
	}

	timestamp := r.Header.Get(headerXTimestamp)
	if timestamp == "" {
		http.Error(w, "missing "+headerXTimestamp+" header", http.StatusBadRequest)
		return vaultRequest{}, false
	}

	signature := r.Header.Get(headerXSignature)
	if signature == "" {
		http.Error(w, "missing "+headerXSignature+" header", http.StatusBadRequest)
		return vaultRequest{}, false
	}

	return vaultRequest{
		bearerToken: strings.TrimPrefix(authorization, bearerPrefix),
		uri:         host + vaultPath,
		timestamp:   timestamp,
		signature:   signature,
	}, true
}

func writeDomainResult(w http.ResponseWriter, body []byte, err error) {
	if err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			status := http.StatusInternalServerError
			if domainErr.Kind == domain.Forbidden {
				status = http.StatusForbidden
			}
			http.Error(w, domainErr.Reason, status)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if len(body) > 0 {
		w.Write(body)
	}
}
