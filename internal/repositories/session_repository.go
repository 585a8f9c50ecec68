package repositories

import (
	"context"

	"timely/internal/models"
)

// SessionRepository defines the interface for completed-session history.
type SessionRepository interface {
	Create(ctx context.Context, session *models.CompletedSession) error
	// ListByUser returns one page of the user's sessions, newest first, and
	// the total number of sessions the user has.
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.CompletedSession, int64, error)
}
