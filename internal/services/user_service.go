package services

import (
	"context"
	"fmt"
	"strings"

	"timely/internal/apperrors"
	"timely/internal/models"
	"timely/internal/repositories"
	"timely/internal/validation"

	"github.com/go-playground/validator/v10"
)

// ProfileInput holds the optional fields of a profile update.
type ProfileInput struct {
	Username *string
	Avatar   *string
}

// profileFields is what ProfileInput is validated as after trimming.
type profileFields struct {
	Username string `validate:"omitempty,min=2,max=30,username"`
	Avatar   string `validate:"omitempty,avatar"`
}

// ProfileStats is the read-only projection served to profile pages. It never
// contains credential material.
type ProfileStats struct {
	Streak   models.Streak `json:"streak"`
	Stats    models.Stats  `json:"stats"`
	Username string        `json:"username"`
	Avatar   string        `json:"avatar"`
}

// UserService handles profile and shortcut management.
type UserService struct {
	repo     repositories.UserRepository
	validate *validator.Validate
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo:     repo,
		validate: validation.New(),
	}
}

// UpdateProfile trims and validates the input, then stores it.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	var update repositories.ProfileUpdate
	var fields profileFields
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, fmt.Errorf("%w: username must be between 2 and 30 characters", apperrors.ErrMalformedInput)
		}
		fields.Username = username
		update.Username = &username
	}
	if in.Avatar != nil {
		avatar := *in.Avatar
		if avatar == "" {
			return nil, fmt.Errorf("%w: invalid avatar selection", apperrors.ErrMalformedInput)
		}
		fields.Avatar = avatar
		update.Avatar = &avatar
	}
	if err := s.validate.Struct(fields); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedInput, err)
	}
	return s.repo.UpdateProfile(ctx, userID, update)
}

// Stats returns the streak and stats projection of a user.
func (s *UserService) Stats(ctx context.Context, userID string) (*ProfileStats, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileStats{
		Streak:   user.Streak,
		Stats:    user.Stats,
		Username: user.Username,
		Avatar:   user.Avatar,
	}, nil
}

// ListShortcuts returns the user's shortcuts.
func (s *UserService) ListShortcuts(ctx context.Context, userID string) ([]models.Shortcut, error) {
	return s.repo.ListShortcuts(ctx, userID)
}

// AddShortcut normalizes key to uppercase and stores the shortcut. An
// existing key yields apperrors.ErrConflict and leaves the stored one intact.
func (s *UserService) AddShortcut(ctx context.Context, userID, key, text string) (*models.Shortcut, error) {
	shortcut := &models.Shortcut{
		UserID: userID,
		Key:    normalizeKey(key),
		Text:   strings.TrimSpace(text),
	}
	if err := s.validate.Struct(shortcut); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedInput, err)
	}
	if err := s.repo.AddShortcut(ctx, shortcut); err != nil {
		return nil, err
	}
	return shortcut, nil
}

// DeleteShortcut removes the shortcut with key (case-insensitive).
func (s *UserService) DeleteShortcut(ctx context.Context, userID, key string) error {
	return s.repo.DeleteShortcut(ctx, userID, normalizeKey(key))
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
