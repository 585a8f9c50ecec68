package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher hashes and verifies bearer secrets with bcrypt.
//
// bcrypt only reads the first 72 bytes of its input and a raw secret is 128
// characters, so the secret is first reduced to its SHA-256 hex digest. Every
// character of the secret therefore affects the comparison.
type SecretHasher struct {
	cost int
}

// NewSecretHasher creates a hasher with the given bcrypt cost. Out of range
// costs fall back to bcrypt.DefaultCost.
func NewSecretHasher(cost int) *SecretHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &SecretHasher{cost: cost}
}

// Hash returns the salted bcrypt hash of secret.
func (h *SecretHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(digest(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether secret matches hash, using bcrypt's own compare.
func (h *SecretHasher) Compare(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(secret)) == nil
}

func digest(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return []byte(hex.EncodeToString(sum[:]))
}
