package repositories

import (
	"context"
	"sort"
	"sync"

	"timely/internal/models"

	"github.com/google/uuid"
)

// MockSessionRepository is an in-memory implementation of SessionRepository.
type MockSessionRepository struct {
	sessions map[string][]models.CompletedSession
	mu       sync.RWMutex
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string][]models.CompletedSession),
	}
}

// Create stores a session.
func (r *MockSessionRepository) Create(_ context.Context, session *models.CompletedSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	r.sessions[session.UserID] = append(r.sessions[session.UserID], *session)
	return nil
}

// ListByUser returns a page of the user's sessions, newest first.
func (r *MockSessionRepository) ListByUser(_ context.Context, userID string, offset, limit int) ([]models.CompletedSession, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.CompletedSession, len(r.sessions[userID]))
	copy(all, r.sessions[userID])
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []models.CompletedSession{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
