package repositories

import (
	"context"
	"fmt"

	"timely/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{db: db}
}

// Create stores a completed session.
func (r *GORMSessionRepository) Create(ctx context.Context, session *models.CompletedSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// ListByUser returns a page of sessions ordered by completion time.
func (r *GORMSessionRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.CompletedSession, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.CompletedSession{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions of user %s: %w", userID, err)
	}

	sessions := []models.CompletedSession{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions of user %s: %w", userID, err)
	}
	return sessions, total, nil
}
