package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytemare/opaque"

	"github.com/Philb37/ferris-vault-server/internal/pwfile"
)

// ErrLoginNotStarted indicates FinishLogin was called for a username that
// has no pending login, either because StartLogin was never called or
// because an earlier FinishLogin for the same username, successful or not,
// already consumed it.
var ErrLoginNotStarted = errors.New("username did not start login phase")

// Authenticator runs the four OPAQUE handshake operations against a fixed
// cipher suite and a Suite of long-lived server key material, persisting
// password files through a pwfile.Store and completed logins into a
// sessionTable.
type Authenticator struct {
	suite         *Suite
	deserializer  *opaque.Deserializer
	passwords     *pwfile.Store
	sessions      *sessionTable
	requestMaxTTL uint64
}

// NewAuthenticator returns an Authenticator for suite, persisting password
// files to passwords. requestMaxTTL bounds how old a signed request's
// timestamp may be before it is rejected as stale.
func NewAuthenticator(suite *Suite, passwords *pwfile.Store, requestMaxTTL uint64) (*Authenticator, error) {
	deserializer, err := suite.conf.Deserializer()
	if err != nil {
		return nil, fmt.Errorf("auth: building deserializer: %w", err)
	}

	return &Authenticator{
		suite:         suite,
		deserializer:  deserializer,
		passwords:     passwords,
		sessions:      newSessionTable(),
		requestMaxTTL: requestMaxTTL,
	}, nil
}

// StartRegistration answers a client's registration request with a
// registration response, without touching any stored state.
func (a *Authenticator) StartRegistration(username string, clientMessage []byte) ([]byte, error) {
	request, err := a.deserializer.RegistrationRequest(clientMessage)
	if err != nil {
		return nil, newError(KindDeserialization, err)
	}

	serverPublicKey := a.suite.conf.AKE.Group().NewElement()
	if err := serverPublicKey.Decode(a.suite.serverPublicKey); err != nil {
		return nil, newError(KindInternal, fmt.Errorf("decoding server public key: %w", err))
	}

	server, err := opaque.NewServer(a.suite.conf)
	if err != nil {
		return nil, newError(KindRegistration, err)
	}

	response := server.RegistrationResponse(request, serverPublicKey, []byte(username), a.suite.oprfSeed)

	return response.Encode(), nil
}

// FinishRegistration accepts a client's completed registration record,
// wraps it into this server's storage format, and persists it as the
// user's password file, unconditionally replacing any prior file.
func (a *Authenticator) FinishRegistration(username string, clientMessage []byte) error {
	record, err := a.deserializer.RegistrationRecord(clientMessage)
	if err != nil {
		return newError(KindDeserialization, err)
	}

	clientRecord := &opaque.ClientRecord{
		RegistrationRecord:   record,
		CredentialIdentifier: []byte(username),
		ClientIdentity:       []byte(username),
	}

	if err := a.passwords.Save(username, encodeClientRecord(clientRecord)); err != nil {
		return newError(KindPasswordFileSave, err)
	}

	return nil
}

// StartLogin begins a login handshake for username, evicting any login
// already pending for that username.
func (a *Authenticator) StartLogin(username string, clientMessage []byte) ([]byte, error) {
	stored, err := a.passwords.Retrieve(username)
	if err != nil {
		return nil, newError(KindPasswordFileRetrieve, err)
	}

	record, err := decodeClientRecord(a.deserializer, stored)
	if err != nil {
		return nil, newError(KindDeserialization, err)
	}

	ke1, err := a.deserializer.KE1(clientMessage)
	if err != nil {
		return nil, newError(KindDeserialization, err)
	}

	server, err := opaque.NewServer(a.suite.conf)
	if err != nil {
		return nil, newError(KindLogin, err)
	}

	if err := server.SetKeyMaterial(a.suite.serverIdentity, a.suite.serverSecretKey, a.suite.serverPublicKey, a.suite.oprfSeed); err != nil {
		return nil, newError(KindInternal, err)
	}

	ke2, err := server.GenerateKE2(ke1, record)
	if err != nil {
		return nil, newError(KindLogin, err)
	}

	a.sessions.setPending(username, server.SerializeState())

	return ke2.Encode(), nil
}

// FinishLogin verifies the client's final handshake message and, on
// success, establishes a Session for username.
func (a *Authenticator) FinishLogin(username string, clientMessage []byte) error {
	state, ok := a.sessions.takePending(username)
	if !ok {
		return newError(KindLogin, ErrLoginNotStarted)
	}

	ke3, err := a.deserializer.KE3(clientMessage)
	if err != nil {
		return newError(KindDeserialization, err)
	}

	server, err := opaque.NewServer(a.suite.conf)
	if err != nil {
		return newError(KindLogin, err)
	}

	if err := server.SetAKEState(state); err != nil {
		return newError(KindInternal, err)
	}

	if err := server.LoginFinish(ke3); err != nil {
		return newError(KindLogin, err)
	}

	if _, err := a.sessions.createSession(server.SessionKey(), username); err != nil {
		return newError(KindCreatingSession, err)
	}

	return nil
}

// VerifyBearerToken reports whether bearerToken names a live session.
func (a *Authenticator) VerifyBearerToken(bearerToken string) bool {
	_, ok := a.sessions.lookup(bearerToken)
	return ok
}

// VerifySignature reports whether signature is the correct HMAC-SHA512 of
// verb|uri|timestamp under the session keyed by bearerToken.
func (a *Authenticator) VerifySignature(bearerToken, verb, uri, timestamp, signature string) (bool, error) {
	session, ok := a.sessions.lookup(bearerToken)
	if !ok {
		return false, nil
	}

	return verifySignature(session.SessionKey, verb, uri, timestamp, signature)
}

// VerifyRequestTimestamp reports whether requestTimestamp is still within
// this server's configured request TTL, measured against wall-clock time.
func (a *Authenticator) VerifyRequestTimestamp(requestTimestamp string) (bool, error) {
	return verifyTimestamp(requestTimestamp, a.requestMaxTTL, uint64(time.Now().Unix()))
}

// UsernameFromSession returns the username bound to bearerToken.
func (a *Authenticator) UsernameFromSession(bearerToken string) (string, error) {
	session, ok := a.sessions.lookup(bearerToken)
	if !ok {
		return "", newError(KindInternal, errors.New("session should be present, checks should have been performed before"))
	}

	return session.Username, nil
}
