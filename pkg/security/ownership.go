package security

import "crypto/subtle"

// NewSecret issues a 20-symbol ownership token. Whoever holds it may edit
// the comment it was posted with.
func NewSecret() string {
	return RandomIDs{}.NewID(SecretLength)
}

// VerifySecret reports whether supplied matches stored byte for byte.
func VerifySecret(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
