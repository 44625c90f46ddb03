package auth

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"sync"

	"golang.org/x/crypto/hkdf"
)

func newSHA512() hash.Hash {
	return sha512.New()
}

const (
	sessionTokenInfo   = "opaque-session-token"
	sessionTokenLength = 64
)

// Session is the server-side record created once a login handshake
// completes: the raw AKE session key, the bearer token derived from it, and
// the username it belongs to.
type Session struct {
	SessionKey  []byte
	BearerToken string
	Username    string
}

// sessionTable holds per-username pending login state and bearer-token
// indexed completed sessions. It is guarded by its own mutex so that it
// behaves correctly if driven directly (e.g. in tests) without the
// coarser Facade lock serializing every call.
type sessionTable struct {
	mu       sync.Mutex
	pending  map[string][]byte // username -> serialized AKE server state
	sessions map[string]Session
}

func newSessionTable() *sessionTable {
	return &sessionTable{
		pending:  make(map[string][]byte),
		sessions: make(map[string]Session),
	}
}

// setPending stores the serialized AKE state for username, discarding any
// state already pending for that username.
func (t *sessionTable) setPending(username string, state []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[username] = state
}

// takePending removes and returns the pending AKE state for username, if
// any. The PendingLogin entry is consumed whether or not the caller goes on
// to finish the login successfully.
func (t *sessionTable) takePending(username string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.pending[username]
	delete(t.pending, username)

	return state, ok
}

// createSession derives a bearer token from sessionKey and records a new
// Session under it.
func (t *sessionTable) createSession(sessionKey []byte, username string) (Session, error) {
	token, err := deriveBearerToken(sessionKey)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		SessionKey:  sessionKey,
		BearerToken: token,
		Username:    username,
	}

	t.mu.Lock()
	t.sessions[token] = session
	t.mu.Unlock()

	return session, nil
}

// lookup returns the Session for a bearer token.
func (t *sessionTable) lookup(bearerToken string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[bearerToken]
	return session, ok
}

// deriveBearerToken computes the bearer token for a 64-byte OPAQUE session
// key: HKDF-SHA512 in extract-skipped form, treating sessionKey itself as
// the pseudorandom key, expanded with a fixed info string to 64 bytes and
// hex-encoded. The client must compute this identically to authenticate
// subsequent requests with the resulting token.
func deriveBearerToken(sessionKey []byte) (string, error) {
	expander := hkdf.Expand(newSHA512, sessionKey, []byte(sessionTokenInfo))

	token := make([]byte, sessionTokenLength)
	if _, err := expander.Read(token); err != nil {
		return "", fmt.Errorf("deriving bearer token: %w", err)
	}

	return hex.EncodeToString(token), nil
}
