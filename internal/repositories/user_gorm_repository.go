package repositories

import (
	"context"
	"errors"
	"fmt"

	"timely/internal/apperrors"
	"timely/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("secret prefix already in use: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByPrefix retrieves the users whose stored prefix equals prefix.
func (r *GORMUserRepository) FindByPrefix(ctx context.Context, prefix string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("secret_prefix = ?", prefix).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to look up users by prefix: %w", err)
	}
	return users, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// UpdateProfile sets username and/or avatar and returns the updated user.
func (r *GORMUserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if update.Username != nil {
		updates["username"] = *update.Username
	}
	if update.Avatar != nil {
		updates["avatar"] = *update.Avatar
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update profile of user %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
		}
	}
	return r.GetByID(ctx, id)
}

// SaveActivity performs a conditional update keyed on id and the activity
// version read by the caller.
func (r *GORMUserRepository) SaveActivity(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND activity_version = ?", user.ID, user.ActivityVersion).
		Updates(map[string]interface{}{
			"streak_current":          user.Streak.Current,
			"streak_longest":          user.Streak.Longest,
			"streak_last_active_date": user.Streak.LastActiveDate,
			"stats_total_sessions":    user.Stats.TotalSessions,
			"stats_total_time":        user.Stats.TotalTime,
			"stats_total_items":       user.Stats.TotalItems,
			"activity_version":        user.ActivityVersion + 1,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save activity of user %s: %w", user.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s changed concurrently: %w", user.ID, apperrors.ErrStaleUpdate)
	}
	user.ActivityVersion++
	return nil
}

// ListShortcuts returns the user's shortcuts in insertion order.
func (r *GORMUserRepository) ListShortcuts(ctx context.Context, userID string) ([]models.Shortcut, error) {
	shortcuts := []models.Shortcut{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&shortcuts).Error; err != nil {
		return nil, fmt.Errorf("failed to list shortcuts of user %s: %w", userID, err)
	}
	return shortcuts, nil
}

// AddShortcut inserts a shortcut; the (user_id, key) index rejects duplicates.
func (r *GORMUserRepository) AddShortcut(ctx context.Context, shortcut *models.Shortcut) error {
	if err := r.db.WithContext(ctx).Create(shortcut).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("shortcut '%s' already exists: %w", shortcut.Key, apperrors.ErrConflict)
		}
		return fmt.Errorf("failed to add shortcut: %w", err)
	}
	return nil
}

// DeleteShortcut removes the shortcut with key from the user's list.
func (r *GORMUserRepository) DeleteShortcut(ctx context.Context, userID, key string) error {
	res := r.db.WithContext(ctx).Where(map[string]interface{}{"user_id": userID, "key": key}).Delete(&models.Shortcut{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete shortcut '%s': %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shortcut '%s': %w", key, apperrors.ErrNotFound)
	}
	return nil
}
