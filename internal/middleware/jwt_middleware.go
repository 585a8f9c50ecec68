package middleware

import (
	"context"

	"timely/internal/apperrors"
	"timely/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const identityKey = "identity"

// Authenticator resolves a session credential to an identity.
// *services.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

// AuthRequired rejects requests without a valid session cookie. Any session
// failure clears the cookie and answers 401.
func AuthRequired(auth Authenticator, cookie SessionCookie, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookie.Name)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		identity, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if !apperrors.IsSessionError(err) {
				return err
			}
			logger.Debug("session rejected", zap.String("path", c.Path()), zap.Error(err))
			cookie.Clear(c)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": apperrors.Message(err),
			})
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when the request carries a valid session
// and continues anonymously otherwise.
func OptionalAuth(auth Authenticator, cookie SessionCookie, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookie.Name)
		if token == "" {
			return c.Next()
		}
		identity, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			logger.Debug("optional session ignored", zap.Error(err))
			return c.Next()
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity attached by AuthRequired or OptionalAuth.
func IdentityFrom(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}
