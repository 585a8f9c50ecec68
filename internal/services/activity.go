package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"timely/internal/apperrors"
	"timely/internal/models"
	"timely/internal/repositories"
	"timely/internal/streak"
)

// maxActivityAttempts bounds the re-read/re-apply loop of applyActivity.
const maxActivityAttempts = 3

// applyActivity advances the streak of user for today, applies delta to the
// stats and saves both with a conditional update. When another request saved
// first the user is re-read and the change applied again, so concurrent
// completions never lose an increment.
func applyActivity(ctx context.Context, repo repositories.UserRepository, user *models.User, today time.Time, delta models.Stats) (*models.User, error) {
	for attempt := 1; ; attempt++ {
		before := user.StreakState()
		after := streak.Advance(today, before)
		if delta == (models.Stats{}) && sameStreak(before, after) {
			return user, nil
		}

		user.SetStreakState(after)
		user.Stats.TotalSessions += delta.TotalSessions
		user.Stats.TotalTime += delta.TotalTime
		user.Stats.TotalItems += delta.TotalItems

		err := repo.SaveActivity(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrStaleUpdate) || attempt == maxActivityAttempts {
			return nil, fmt.Errorf("failed to save activity: %w", err)
		}

		user, err = repo.GetByID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
	}
}

func sameStreak(a, b streak.State) bool {
	if a.Current != b.Current || a.Longest != b.Longest {
		return false
	}
	if a.LastActive == nil || b.LastActive == nil {
		return a.LastActive == b.LastActive
	}
	return a.LastActive.Equal(*b.LastActive)
}
