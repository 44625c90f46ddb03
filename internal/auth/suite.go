package auth

import (
	"crypto"

	"github.com/bytemare/ksf"
	"github.com/bytemare/opaque"
)

// Configuration returns the fixed OPAQUE cipher suite this server speaks:
// Ristretto255 with SHA-512 for both the OPRF and the AKE group, Argon2id
// as the key-stretching function, and SHA-512 for the KDF, MAC and hash.
// Every Authenticator built by this package uses the same value.
func Configuration() *opaque.Configuration {
	return &opaque.Configuration{
		OPRF: opaque.RistrettoSha512,
		AKE:  opaque.RistrettoSha512,
		KSF:  ksf.Argon2id,
		KDF:  crypto.SHA512,
		MAC:  crypto.SHA512,
		Hash: crypto.SHA512,
	}
}

// Suite is this server's long-lived secret root: the AKE static keypair and
// the OPRF seed used to derive every user's per-credential OPRF key. It is
// the Go name for what the protocol calls ServerSetup.
//
// A Suite is generated once, in memory, when the server starts, and is
// never persisted. Restarting the process invalidates every existing
// password file, since the envelopes they contain were sealed against the
// previous Suite's key material.
type Suite struct {
	conf            *opaque.Configuration
	serverIdentity  []byte
	serverSecretKey []byte
	serverPublicKey []byte
	oprfSeed        []byte
}

// NewSuite generates a fresh Suite for the given server identity (typically
// a hostname or stable service name; it need not be kept secret).
func NewSuite(serverIdentity string) *Suite {
	conf := Configuration()

	secretKey, publicKey := conf.KeyGen()
	oprfSeed := conf.GenerateOPRFSeed()

	return &Suite{
		conf:            conf,
		serverIdentity:  []byte(serverIdentity),
		serverSecretKey: secretKey,
		serverPublicKey: publicKey,
		oprfSeed:        oprfSeed,
	}
}
