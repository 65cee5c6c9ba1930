package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters Fingerprint returns.
const FingerprintLength = 12

// Fingerprint returns a short hex SHA-256 prefix of tok, or "" for an
// empty token.
func Fingerprint(tok string) string {
	if tok == "" {
		return ""
	}
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])[:FingerprintLength]
}

// Equal reports whether a and b are the same token, in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
