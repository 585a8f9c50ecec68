package repositories

import (
	"context"
	"fmt"
	"sync"

	"timely/internal/apperrors"
	"timely/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users     map[string]models.User
	prefixes  map[string]string // secret prefix -> user ID
	shortcuts map[string][]models.Shortcut
	nextID    uint
	mu        sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:     make(map[string]models.User),
		prefixes:  make(map[string]string),
		shortcuts: make(map[string][]models.Shortcut),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.prefixes[user.SecretPrefix]; taken {
		return fmt.Errorf("secret prefix already in use: %w", apperrors.ErrConflict)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	r.users[user.ID] = *user
	r.prefixes[user.SecretPrefix] = user.ID
	return nil
}

// FindByPrefix returns the user registered with prefix, if any.
func (r *MockUserRepository) FindByPrefix(_ context.Context, prefix string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.prefixes[prefix]
	if !ok {
		return nil, nil
	}
	return []models.User{r.users[id]}, nil
}

// GetByID returns a user by its ID.
func (r *MockUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
	}
	return &user, nil
}

// UpdateProfile modifies username and avatar.
func (r *MockUserRepository) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, apperrors.ErrNotFound)
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	r.users[id] = user
	return &user, nil
}

// SaveActivity stores streak and stats if nobody else saved in between.
func (r *MockUserRepository) SaveActivity(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok || stored.ActivityVersion != user.ActivityVersion {
		return fmt.Errorf("user %s changed concurrently: %w", user.ID, apperrors.ErrStaleUpdate)
	}
	stored.Streak = user.Streak
	stored.Stats = user.Stats
	stored.ActivityVersion++
	r.users[user.ID] = stored
	user.ActivityVersion = stored.ActivityVersion
	return nil
}

// ListShortcuts returns a copy of the user's shortcuts.
func (r *MockUserRepository) ListShortcuts(_ context.Context, userID string) ([]models.Shortcut, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Shortcut, len(r.shortcuts[userID]))
	copy(list, r.shortcuts[userID])
	return list, nil
}

// AddShortcut appends a shortcut unless the key is taken.
func (r *MockUserRepository) AddShortcut(_ context.Context, shortcut *models.Shortcut) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.shortcuts[shortcut.UserID] {
		if s.Key == shortcut.Key {
			return fmt.Errorf("shortcut '%s' already exists: %w", shortcut.Key, apperrors.ErrConflict)
		}
	}
	r.nextID++
	shortcut.ID = r.nextID
	r.shortcuts[shortcut.UserID] = append(r.shortcuts[shortcut.UserID], *shortcut)
	return nil
}

// DeleteShortcut removes a shortcut by key.
func (r *MockUserRepository) DeleteShortcut(_ context.Context, userID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.shortcuts[userID]
	for i, s := range list {
		if s.Key == key {
			r.shortcuts[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("shortcut '%s': %w", key, apperrors.ErrNotFound)
}
