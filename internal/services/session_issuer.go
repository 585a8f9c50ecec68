package services

import (
	"fmt"
	"time"

	"timely/internal/apperrors"

	"github.com/dgrijalva/jwt-go"
)

// SessionClaims is the payload of a session credential.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

// SessionIssuer signs and checks stateless session credentials. The key is
// fixed for the lifetime of the issuer.
type SessionIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessionIssuer creates an issuer signing with key (HS256).
func NewSessionIssuer(key string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{
		key: []byte(key),
		ttl: ttl,
		now: time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (i *SessionIssuer) WithClock(now func() time.Time) *SessionIssuer {
	i.now = now
	return i
}

// TTL returns the lifetime of issued credentials.
func (i *SessionIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed credential for userID and its expiry.
func (i *SessionIssuer) Issue(userID string) (string, time.Time, error) {
	issuedAt := i.now()
	expiresAt := issuedAt.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: expiresAt.Unix(),
		},
	})

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and expiry and returns the user ID. Expired
// credentials yield apperrors.ErrExpired; anything else unusable yields
// apperrors.ErrInvalidSignature.
func (i *SessionIssuer) Parse(tokenString string) (string, error) {
	claims := &SessionClaims{}
	parser := &jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
		// Expiry is checked below against the issuer's clock.
		SkipClaimsValidation: true,
	}

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}
	if !claims.VerifyExpiresAt(i.now().Unix(), true) {
		return "", apperrors.ErrExpired
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing user id", apperrors.ErrInvalidSignature)
	}
	return claims.UserID, nil
}
