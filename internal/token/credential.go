package token

import (
	"crypto/rand"
	"fmt"
)

const (
	credentialChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	credentialLength = 12
)

// GenerateCredential returns a new random bearer credential in the same
// alphabet customers already have in circulation.
func GenerateCredential() (string, error) {
	buf := make([]byte, credentialLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token credential: %w", err)
	}

	for i, b := range buf {
		buf[i] = credentialChars[int(b)%len(credentialChars)]
	}

	return string(buf), nil
}
