package handlers

import (
	"errors"

	"timely/internal/apperrors"
	"timely/internal/middleware"
	"timely/internal/services"
	"timely/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ValidationError carries per-field messages of a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

func (e *ValidationError) Unwrap() error { return apperrors.ErrMalformedInput }

// ErrorHandler turns errors returned by handlers into JSON responses. Only
// messages from apperrors.Message or fiber.Error reach the client; the
// underlying error is logged.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "Validation failed",
				"errors": ve.Fields,
			})
		}

		status := apperrors.Status(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		} else {
			logger.Debug("request rejected", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{"error": apperrors.Message(err)})
	}
}

// AuthedHandler is a handler that requires an authenticated identity.
type AuthedHandler func(c *fiber.Ctx, identity services.Identity) error

// Authed adapts h to a fiber.Handler. It must run behind
// middleware.AuthRequired; without an identity the request is rejected.
func Authed(h AuthedHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := middleware.IdentityFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
		}
		return h(c, identity)
	}
}

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		return &ValidationError{Fields: validation.Messages(err)}
	}
	return nil
}
