package repositories

import (
	"context"

	"timely/internal/models"
)

// ProfileUpdate carries the optional profile fields of a PATCH. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Username *string
	Avatar   *string
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create assigns an ID and persists user. A duplicate secret prefix
	// yields apperrors.ErrConflict.
	Create(ctx context.Context, user *models.User) error
	// FindByPrefix returns the login candidates for a secret prefix.
	FindByPrefix(ctx context.Context, prefix string) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error)
	// SaveActivity writes streak and stats only if the stored
	// ActivityVersion still equals user.ActivityVersion, then bumps it.
	// A lost race yields apperrors.ErrStaleUpdate.
	SaveActivity(ctx context.Context, user *models.User) error

	ListShortcuts(ctx context.Context, userID string) ([]models.Shortcut, error)
	AddShortcut(ctx context.Context, shortcut *models.Shortcut) error
	DeleteShortcut(ctx context.Context, userID, key string) error
}
