// Package tokens generates and checks the bearer secrets users log in with.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"timely/internal/apperrors"
)

const (
	// SecretBytes is the amount of entropy in a registration secret.
	SecretBytes = 64
	// SecretLength is the hex-encoded length of a registration secret.
	SecretLength = SecretBytes * 2
	// PrefixLength is how many leading characters are stored in the clear
	// to narrow the login lookup.
	PrefixLength = 16
)

// Generate returns byteLength random bytes from crypto/rand, hex encoded.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("invalid byte length %d", byteLength)
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewSecret returns a fresh registration secret of SecretLength characters.
func NewSecret() (string, error) {
	return Generate(SecretBytes)
}

// ValidateFormat checks that secret is exactly SecretLength hex characters.
func ValidateFormat(secret string) error {
	if len(secret) != SecretLength {
		return fmt.Errorf("%w: token must be %d characters", apperrors.ErrMalformedInput, SecretLength)
	}
	for i := 0; i < len(secret); i++ {
		if !isHex(secret[i]) {
			return fmt.Errorf("%w: token must be hexadecimal", apperrors.ErrMalformedInput)
		}
	}
	return nil
}

// Prefix returns the lookup prefix of a well-formed secret.
func Prefix(secret string) string {
	if len(secret) < PrefixLength {
		return secret
	}
	return secret[:PrefixLength]
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
