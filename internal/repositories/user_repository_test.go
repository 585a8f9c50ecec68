package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"timely/internal/apperrors"
	"timely/internal/database"
	"timely/internal/models"
	"timely/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB returns a private in-memory SQLite database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	return db
}

// userRepos runs every test against both implementations.
func userRepos(t *testing.T) map[string]repositories.UserRepository {
	return map[string]repositories.UserRepository{
		"gorm":   repositories.NewGORMUserRepository(openTestDB(t)),
		"memory": repositories.NewMockUserRepository(),
	}
}

func newUser(prefix string) *models.User {
	return &models.User{SecretHash: "hash-" + prefix, SecretPrefix: prefix}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			user := newUser("0123456789abcdef")
			require.NoError(t, repo.Create(ctx, user))
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, models.DefaultAvatar, user.Avatar)

			candidates, err := repo.FindByPrefix(ctx, "0123456789abcdef")
			require.NoError(t, err)
			require.Len(t, candidates, 1)
			assert.Equal(t, user.ID, candidates[0].ID)
			assert.Equal(t, "hash-0123456789abcdef", candidates[0].SecretHash)

			candidates, err = repo.FindByPrefix(ctx, "fedcba9876543210")
			require.NoError(t, err)
			assert.Empty(t, candidates)

			loaded, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, loaded.Streak.Current)
			assert.Nil(t, loaded.Streak.LastActiveDate)
			assert.Zero(t, loaded.Stats.TotalSessions)

			_, err = repo.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestUserRepository_PrefixCollision(t *testing.T) {
	ctx := context.Background()
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Create(ctx, newUser("aaaaaaaaaaaaaaaa")))
			err := repo.Create(ctx, newUser("aaaaaaaaaaaaaaaa"))
			assert.ErrorIs(t, err, apperrors.ErrConflict)
		})
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			user := newUser("bbbbbbbbbbbbbbbb")
			require.NoError(t, repo.Create(ctx, user))

			username := "Ada"
			updated, err := repo.UpdateProfile(ctx, user.ID, repositories.ProfileUpdate{Username: &username})
			require.NoError(t, err)
			assert.Equal(t, "Ada", updated.Username)
			assert.Equal(t, models.DefaultAvatar, updated.Avatar)

			avatar := "avatar7"
			updated, err = repo.UpdateProfile(ctx, user.ID, repositories.ProfileUpdate{Avatar: &avatar})
			require.NoError(t, err)
			assert.Equal(t, "Ada", updated.Username)
			assert.Equal(t, "avatar7", updated.Avatar)

			_, err = repo.UpdateProfile(ctx, "missing", repositories.ProfileUpdate{Avatar: &avatar})
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
		})
	}
}

func TestUserRepository_SaveActivity(t *testing.T) {
	ctx := context.Background()
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			user := newUser("cccccccccccccccc")
			require.NoError(t, repo.Create(ctx, user))

			first, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			second, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)

			day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
			first.Streak = models.Streak{Current: 1, Longest: 1, LastActiveDate: &day}
			first.Stats = models.Stats{TotalSessions: 1, TotalTime: 90, TotalItems: 3}
			require.NoError(t, repo.SaveActivity(ctx, first))
			assert.Equal(t, 1, first.ActivityVersion)

			second.Stats.TotalSessions = 1
			assert.ErrorIs(t, repo.SaveActivity(ctx, second), apperrors.ErrStaleUpdate)

			loaded, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, models.Stats{TotalSessions: 1, TotalTime: 90, TotalItems: 3}, loaded.Stats)
			assert.Equal(t, 1, loaded.Streak.Current)
			require.NotNil(t, loaded.Streak.LastActiveDate)
			assert.True(t, loaded.Streak.LastActiveDate.Equal(day))
		})
	}
}

func TestUserRepository_Shortcuts(t *testing.T) {
	ctx := context.Background()
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			user := newUser("dddddddddddddddd")
			require.NoError(t, repo.Create(ctx, user))
			other := newUser("eeeeeeeeeeeeeeee")
			require.NoError(t, repo.Create(ctx, other))

			require.NoError(t, repo.AddShortcut(ctx, &models.Shortcut{UserID: user.ID, Key: "T", Text: "Take a break"}))
			err := repo.AddShortcut(ctx, &models.Shortcut{UserID: user.ID, Key: "T", Text: "Something else"})
			assert.ErrorIs(t, err, apperrors.ErrConflict)

			// Keys are unique per user, not globally.
			require.NoError(t, repo.AddShortcut(ctx, &models.Shortcut{UserID: other.ID, Key: "T", Text: "Mine"}))
			require.NoError(t, repo.AddShortcut(ctx, &models.Shortcut{UserID: user.ID, Key: "GO", Text: "Go"}))

			list, err := repo.ListShortcuts(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "T", list[0].Key)
			assert.Equal(t, "Take a break", list[0].Text)
			assert.Equal(t, "GO", list[1].Key)

			require.NoError(t, repo.DeleteShortcut(ctx, user.ID, "T"))
			assert.ErrorIs(t, repo.DeleteShortcut(ctx, user.ID, "T"), apperrors.ErrNotFound)

			list, err = repo.ListShortcuts(ctx, user.ID)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "GO", list[0].Key)

			list, err = repo.ListShortcuts(ctx, other.ID)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}
