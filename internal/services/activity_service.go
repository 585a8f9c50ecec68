package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"timely/internal/apperrors"
	"timely/internal/models"
	"timely/internal/repositories"
	"timely/internal/streak"

	"go.uber.org/zap"
)

// History page size bounds.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Completion is a finished play-through reported by the player.
type Completion struct {
	UserID        string
	StackID       string
	TotalDuration int64 // seconds
	ItemCount     int
}

// CompletionResult is the outcome of RecordCompletion.
type CompletionResult struct {
	Session *models.CompletedSession
	Streak  models.Streak
	Stats   models.Stats
}

// HistoryPage is one page of a user's completed sessions.
type HistoryPage struct {
	Sessions []models.CompletedSession `json:"sessions"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	Limit    int                       `json:"limit"`
	Pages    int                       `json:"pages"`
}

// ActivityService records session completions: stats, streak and history.
type ActivityService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	location    *time.Location
	events      EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewActivityService creates a new ActivityService.
func NewActivityService(userRepo repositories.UserRepository, sessionRepo repositories.SessionRepository, location *time.Location, logger *zap.Logger) *ActivityService {
	if location == nil {
		location = time.UTC
	}
	return &ActivityService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *ActivityService) WithClock(now func() time.Time) *ActivityService {
	s.now = now
	return s
}

// WithEvents enables publishing of completion events.
func (s *ActivityService) WithEvents(p EventPublisher) *ActivityService {
	s.events = p
	return s
}

// RecordCompletion adds the completion to the user's stats, credits today's
// streak and appends a history row.
func (s *ActivityService) RecordCompletion(ctx context.Context, c Completion) (*CompletionResult, error) {
	if c.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrMalformedInput)
	}
	if c.TotalDuration < 0 || c.ItemCount < 0 {
		return nil, fmt.Errorf("%w: duration and item count must not be negative", apperrors.ErrMalformedInput)
	}

	user, err := s.userRepo.GetByID(ctx, c.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user, err = applyActivity(ctx, s.userRepo, user, streak.DayOf(now, s.location), models.Stats{
		TotalSessions: 1,
		TotalTime:     c.TotalDuration,
		TotalItems:    int64(c.ItemCount),
	})
	if err != nil {
		return nil, err
	}

	session := &models.CompletedSession{
		UserID:        c.UserID,
		StackID:       c.StackID,
		ItemCount:     c.ItemCount,
		TotalDuration: c.TotalDuration,
		CompletedAt:   now.UTC(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session history: %w", err)
	}

	s.logger.Info("session completed",
		zap.String("user_id", c.UserID),
		zap.Int("items", c.ItemCount),
		zap.Int64("duration", c.TotalDuration),
		zap.Int("streak", user.Streak.Current),
	)
	publishEvent(s.events, s.logger, RoutingSessionCompleted, SessionCompletedEvent{
		UserID:        c.UserID,
		SessionID:     session.ID,
		StackID:       c.StackID,
		TotalDuration: c.TotalDuration,
		ItemCount:     c.ItemCount,
		StreakCurrent: user.Streak.Current,
		CompletedAt:   session.CompletedAt,
	})

	return &CompletionResult{Session: session, Streak: user.Streak, Stats: user.Stats}, nil
}

// History returns page (1-based) of the user's sessions, newest first.
func (s *ActivityService) History(ctx context.Context, userID string, page, limit int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	sessions, total, err := s.sessionRepo.ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{
		Sessions: sessions,
		Total:    total,
		Page:     page,
		Limit:    limit,
		Pages:    int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}
