package auth

import "fmt"

// Kind classifies why an authentication operation failed.
type Kind int

const (
	// KindDeserialization indicates a client message could not be parsed.
	KindDeserialization Kind = iota
	// KindRegistration indicates the OPAQUE registration handshake failed.
	KindRegistration
	// KindLogin indicates the OPAQUE login handshake failed.
	KindLogin
	// KindPasswordFileSave indicates the password file could not be persisted.
	KindPasswordFileSave
	// KindPasswordFileRetrieve indicates the password file could not be read.
	KindPasswordFileRetrieve
	// KindCreatingSession indicates session establishment failed after a successful login.
	KindCreatingSession
	// KindInternal indicates an error unrelated to client input.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindDeserialization:
		return "deserialization"
	case KindRegistration:
		return "registration"
	case KindLogin:
		return "login"
	case KindPasswordFileSave:
		return "password file save"
	case KindPasswordFileRetrieve:
		return "password file retrieve"
	case KindCreatingSession:
		return "creating session"
	default:
		return "internal"
	}
}

// Error is returned by every Authenticator and Authorizer operation.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
