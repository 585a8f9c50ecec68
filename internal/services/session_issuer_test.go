package services_test

import (
	"testing"
	"time"

	"timely/internal/apperrors"
	"timely/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIssuer_Lifecycle(t *testing.T) {
	issuedAt := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	issuer := services.NewSessionIssuer(testJWTSecret, 7*24*time.Hour).WithClock(clock.Now)

	token, expiresAt, err := issuer.Issue("user-123")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(7*24*time.Hour), expiresAt)

	clock.now = issuedAt.Add(6*24*time.Hour + 23*time.Hour)
	userID, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	clock.now = issuedAt.Add(7*24*time.Hour + time.Hour)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrExpired)
}

func TestSessionIssuer_RejectsForeignCredentials(t *testing.T) {
	issuer := services.NewSessionIssuer(testJWTSecret, time.Hour)
	other := services.NewSessionIssuer("another_secret", time.Hour)

	token, _, err := other.Issue("user-123")
	require.NoError(t, err)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	_, err = issuer.Parse("invalid.token.string")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	_, err = issuer.Parse("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	// Unsigned tokens must never be accepted.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	unsignedString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsignedString)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	// A validly signed token without a user is useless.
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	anonymousString, err := anonymous.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	_, err = issuer.Parse(anonymousString)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)
}

func TestSecretHasher(t *testing.T) {
	hasher := services.NewSecretHasher(4)
	secret := "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

	hash, err := hasher.Hash(secret)
	require.NoError(t, err)
	assert.True(t, hasher.Compare(hash, secret))
	assert.False(t, hasher.Compare(hash, secret[:127]+"0"))
	assert.False(t, hasher.Compare("not-a-hash", secret))

	again, err := hasher.Hash(secret)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")
}
