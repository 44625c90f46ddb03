package auth

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bytemare/opaque"
)

// encodeClientRecord turns a ClientRecord into the byte string persisted as
// a password file. The library only defines wire encodings for protocol
// messages, not for this server-side storage record, so the three fields
// are framed by hand with 32-bit length prefixes.
func encodeClientRecord(record *opaque.ClientRecord) []byte {
	registration := record.RegistrationRecord.Encode()

	buf := make([]byte, 0, 12+len(registration)+len(record.CredentialIdentifier)+len(record.ClientIdentity))
	buf = appendChunk(buf, registration)
	buf = appendChunk(buf, record.CredentialIdentifier)
	buf = appendChunk(buf, record.ClientIdentity)

	return buf
}

func appendChunk(buf, chunk []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(chunk)))
	buf = append(buf, length[:]...)
	return append(buf, chunk...)
}

// decodeClientRecord reverses encodeClientRecord, using deserializer to
// rebuild the registration record's internal curve points.
func decodeClientRecord(deserializer *opaque.Deserializer, stored []byte) (*opaque.ClientRecord, error) {
	registration, rest, err := readChunk(stored)
	if err != nil {
		return nil, fmt.Errorf("password file: registration record: %w", err)
	}

	credentialIdentifier, rest, err := readChunk(rest)
	if err != nil {
		return nil, fmt.Errorf("password file: credential identifier: %w", err)
	}

	clientIdentity, rest, err := readChunk(rest)
	if err != nil {
		return nil, fmt.Errorf("password file: client identity: %w", err)
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("password file: %w", io.ErrUnexpectedEOF)
	}

	regRecord, err := deserializer.RegistrationRecord(registration)
	if err != nil {
		return nil, fmt.Errorf("password file: decoding registration record: %w", err)
	}

	return &opaque.ClientRecord{
		RegistrationRecord:   regRecord,
		CredentialIdentifier: credentialIdentifier,
		ClientIdentity:       clientIdentity,
	}, nil
}

func readChunk(buf []byte) (chunk, rest []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, io.ErrUnexpectedEOF
	}

	length := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]

	if uint32(len(buf)) < length {
		return nil, nil, io.ErrUnexpectedEOF
	}

	return buf[:length], buf[length:], nil
}
