package handlers

import (
	"errors"

	"timely/internal/apperrors"
	"timely/internal/middleware"
	"timely/internal/services"
	"timely/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	cookie      middleware.SessionCookie
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		validate:    validation.New(),
	}
}

// AuthRoutes holds the middleware stacks of the authentication routes.
type AuthRoutes struct {
	Register fiber.Handler // token generation limiter
	Login    fiber.Handler // failed-attempt limiter
	Optional fiber.Handler
	Required fiber.Handler
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, mw AuthRoutes) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", mw.Register, h.HandleRegister)
	authRoutes.Post("/login", mw.Login, h.HandleLogin)
	authRoutes.Get("/check", mw.Optional, h.HandleCheck)
	authRoutes.Post("/logout", mw.Required, Authed(h.HandleLogout))
}

// HandleRegister creates an account and returns its secret exactly once.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	res, err := h.authService.Register(c.UserContext())
	if err != nil {
		return err
	}

	h.cookie.Set(c, res.Token, res.ExpiresAt)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully!",
		"token":   res.Secret,
		"userId":  res.User.ID,
		"warning": "Save this token securely! You will need it to log in.",
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// HandleLogin exchanges a secret for a session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.UserContext(), req.Token)
	if err != nil {
		if errors.Is(err, apperrors.ErrMalformedInput) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid token format. Token must be 128 characters.")
		}
		return err
	}

	h.cookie.Set(c, res.Token, res.ExpiresAt)
	return c.JSON(fiber.Map{
		"message": "Login successful!",
		"user": fiber.Map{
			"id":         res.User.ID,
			"username":   res.User.Username,
			"avatar":     res.User.Avatar,
			"streak":     res.User.Streak.Current,
			"hasProfile": res.User.HasProfile(),
		},
	})
}

// HandleCheck reports whether the request carries a valid session.
func (h *AuthHandler) HandleCheck(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"authenticated": false,
		})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          identity,
	})
}

// HandleLogout clears the session cookie. Sessions are stateless, so there
// is nothing to revoke server-side.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx, _ services.Identity) error {
	h.cookie.Clear(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}
