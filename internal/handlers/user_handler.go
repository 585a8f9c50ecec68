package handlers

import (
	"errors"
	"fmt"

	"timely/internal/apperrors"
	"timely/internal/services"
	"timely/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and shortcut requests.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validation.New(),
	}
}

// RegisterRoutes registers the user routes behind the auth middleware.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/user", authRequired)
	userRoutes.Get("/profile/stats", Authed(h.HandleStats))
	userRoutes.Patch("/profile", Authed(h.HandleUpdateProfile))
	userRoutes.Get("/shortcuts", Authed(h.HandleListShortcuts))
	userRoutes.Post("/shortcuts", Authed(h.HandleAddShortcut))
	userRoutes.Delete("/shortcuts/:key", Authed(h.HandleDeleteShortcut))
}

// ProfileRequest is the body of a profile update. Absent fields are left
// unchanged.
type ProfileRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
}

// HandleUpdateProfile updates username and avatar.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx, identity services.Identity) error {
	var req ProfileRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.UserContext(), identity.UserID, services.ProfileInput{
		Username: req.Username,
		Avatar:   req.Avatar,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrMalformedInput) {
			return fiber.NewError(fiber.StatusBadRequest, "Username must be 2-30 characters of letters, digits, spaces, '_' or '-' and avatar one of the provided avatars")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"avatar":   user.Avatar,
		},
	})
}

// HandleStats returns streak, stats and profile fields.
func (h *UserHandler) HandleStats(c *fiber.Ctx, identity services.Identity) error {
	stats, err := h.service.Stats(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// HandleListShortcuts returns the user's shortcuts.
func (h *UserHandler) HandleListShortcuts(c *fiber.Ctx, identity services.Identity) error {
	shortcuts, err := h.service.ListShortcuts(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"shortcuts": shortcuts})
}

// ShortcutRequest is the body of a new shortcut.
type ShortcutRequest struct {
	Key  string `json:"key" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// HandleAddShortcut adds a shortcut; an existing key answers 409.
func (h *UserHandler) HandleAddShortcut(c *fiber.Ctx, identity services.Identity) error {
	var req ShortcutRequest
	if err := bind(c, h.validate, &req); err != nil {
		return err
	}

	shortcut, err := h.service.AddShortcut(c.UserContext(), identity.UserID, req.Key, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Shortcut '%s' already exists", req.Key))
		case errors.Is(err, apperrors.ErrMalformedInput):
			return fiber.NewError(fiber.StatusBadRequest, "Shortcut key must be 1-3 letters and text at most 200 characters")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Shortcut added successfully",
		"shortcut": shortcut,
	})
}

// HandleDeleteShortcut removes a shortcut by key.
func (h *UserHandler) HandleDeleteShortcut(c *fiber.Ctx, identity services.Identity) error {
	key := c.Params("key")
	if err := h.service.DeleteShortcut(c.UserContext(), identity.UserID, key); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Shortcut '%s' not found", key))
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "Shortcut deleted successfully"})
}
