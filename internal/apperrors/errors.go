// Package apperrors holds the error taxonomy shared by the store, the auth
// services and the HTTP layer. Only the messages returned by Message are ever
// shown to clients; wrapped infrastructure errors stay in the logs.
package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrMalformedInput is returned for secrets or profile fields that fail
	// format checks. Nothing has touched the store when it is returned.
	ErrMalformedInput = errors.New("malformed input")

	// ErrConflict signals a uniqueness violation (secret prefix, shortcut key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredential means no stored hash matched the presented secret.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExpired is returned for a session credential past its expiry.
	ErrExpired = errors.New("session expired")

	// ErrInvalidSignature covers every other unusable session credential.
	ErrInvalidSignature = errors.New("invalid session signature")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStaleUpdate is returned by conditional updates that lost a race.
	ErrStaleUpdate = errors.New("stale update")
)

// IsSessionError reports whether err should end the client's session.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrNotFound)
}

// Status maps an error to the HTTP status code sent to the client.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrMalformedInput):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrInvalidSignature):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the client-safe message for err. Unknown errors collapse to
// a generic message so internal details never leak.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMalformedInput):
		return "Invalid input"
	case errors.Is(err, ErrConflict):
		return "Conflict. Please try again."
	case errors.Is(err, ErrInvalidCredential):
		return "Invalid token. Please check and try again."
	case errors.Is(err, ErrExpired):
		return "Token expired. Please log in again."
	case errors.Is(err, ErrInvalidSignature):
		return "Invalid token. Please log in again."
	case errors.Is(err, ErrNotFound):
		return "Not found"
	default:
		return "Internal server error"
	}
}
