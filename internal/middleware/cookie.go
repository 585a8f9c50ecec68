package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie describes the cookie carrying the session credential.
type SessionCookie struct {
	Name     string
	Secure   bool
	SameSite string
}

// NewSessionCookie returns the "token" cookie settings. An empty sameSite
// selects Lax.
func NewSessionCookie(secure bool, sameSite string) SessionCookie {
	sameSite = strings.ToLower(sameSite)
	switch sameSite {
	case fiber.CookieSameSiteStrictMode, fiber.CookieSameSiteNoneMode, fiber.CookieSameSiteLaxMode:
	default:
		sameSite = fiber.CookieSameSiteLaxMode
	}
	return SessionCookie{Name: "token", Secure: secure, SameSite: sameSite}
}

// Set writes token with the given expiry.
func (s SessionCookie) Set(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(s.build(c, token, expires))
}

// Clear expires the cookie on the client.
func (s SessionCookie) Clear(c *fiber.Ctx) {
	c.Cookie(s.build(c, "", time.Unix(0, 0)))
}

func (s SessionCookie) build(c *fiber.Ctx, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     s.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.Secure || c.Protocol() == "https" || s.SameSite == fiber.CookieSameSiteNoneMode,
		SameSite: s.SameSite,
	}
}
