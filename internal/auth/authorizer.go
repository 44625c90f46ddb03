package auth

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
)

// verifySignature reports whether signature is the hex-encoded HMAC-SHA512
// of "verb|uri|timestamp" under sessionKey. The comparison is constant
// time: an attacker who can observe response latency must not be able to
// recover the expected signature byte by byte.
func verifySignature(sessionKey []byte, verb, uri, timestamp, signature string) (bool, error) {
	mac := hmac.New(sha512.New, sessionKey)
	fmt.Fprintf(mac, "%s|%s|%s", verb, uri, timestamp)
	expected := mac.Sum(nil)

	given, err := hex.DecodeString(signature)
	if err != nil {
		return false, nil
	}

	return hmac.Equal(given, expected), nil
}

// verifyTimestamp reports whether a request created at requestTimestamp is
// still within maxTTLSeconds of now. The age is computed with saturating
// subtraction: a timestamp in the future yields an age of zero rather than
// wrapping, so it is always treated as fresh.
func verifyTimestamp(requestTimestamp string, maxTTLSeconds, now uint64) (bool, error) {
	created, err := strconv.ParseUint(requestTimestamp, 10, 64)
	if err != nil {
		return false, newError(KindInternal, fmt.Errorf("parsing request timestamp: %w", err))
	}

	var age uint64
	if now > created {
		age = now - created
	}

	return maxTTLSeconds >= age, nil
}
