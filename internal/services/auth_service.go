package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"timely/internal/apperrors"
	"timely/internal/models"
	"timely/internal/repositories"
	"timely/internal/streak"
	"timely/internal/tokens"

	"go.uber.org/zap"
)

// maxRegisterAttempts is how many fresh secrets Register tries when the
// generated prefix is already taken.
const maxRegisterAttempts = 3

// Identity is the resolved user attached to an authenticated request.
type Identity struct {
	UserID        string       `json:"id"`
	Username      string       `json:"username"`
	Avatar        string       `json:"avatar"`
	StreakCurrent int          `json:"streak"`
	Stats         models.Stats `json:"stats"`
}

// IdentityOf projects a user record to an Identity.
func IdentityOf(u *models.User) Identity {
	return Identity{
		UserID:        u.ID,
		Username:      u.Username,
		Avatar:        u.Avatar,
		StreakCurrent: u.Streak.Current,
		Stats:         u.Stats,
	}
}

// RegisterResult is returned once per registration. Secret is the only copy
// of the raw secret the server ever hands out.
type RegisterResult struct {
	Secret    string
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// LoginResult carries the session credential of a successful login.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration, login and session authentication.
type AuthService struct {
	userRepo repositories.UserRepository
	issuer   *SessionIssuer
	hasher   *SecretHasher
	location *time.Location
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService. Streak days are computed in
// location.
func NewAuthService(userRepo repositories.UserRepository, issuer *SessionIssuer, hasher *SecretHasher, location *time.Location, logger *zap.Logger) *AuthService {
	if location == nil {
		location = time.UTC
	}
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		hasher:   hasher,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for streak days.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithEvents enables publishing of registration events.
func (s *AuthService) WithEvents(p EventPublisher) *AuthService {
	s.events = p
	return s
}

// Register creates a user with a fresh secret and opens a session for it.
func (s *AuthService) Register(ctx context.Context) (*RegisterResult, error) {
	for attempt := 1; attempt <= maxRegisterAttempts; attempt++ {
		secret, err := tokens.NewSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate secret: %w", err)
		}
		hash, err := s.hasher.Hash(secret)
		if err != nil {
			return nil, err
		}

		user := &models.User{
			SecretHash:   hash,
			SecretPrefix: tokens.Prefix(secret),
			Avatar:       models.DefaultAvatar,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				s.logger.Warn("secret prefix collision, retrying registration", zap.Int("attempt", attempt))
				continue
			}
			return nil, fmt.Errorf("failed to register user: %w", err)
		}

		token, expiresAt, err := s.issuer.Issue(user.ID)
		if err != nil {
			return nil, err
		}

		s.logger.Info("user registered", zap.String("user_id", user.ID))
		publishEvent(s.events, s.logger, RoutingUserRegistered, UserRegisteredEvent{
			UserID:     user.ID,
			RegisterAt: s.now(),
		})

		return &RegisterResult{Secret: secret, User: user, Token: token, ExpiresAt: expiresAt}, nil
	}
	return nil, fmt.Errorf("registration failed after %d attempts: %w", maxRegisterAttempts, apperrors.ErrConflict)
}

// Login verifies rawSecret, credits today's streak and issues a session.
// Malformed secrets are rejected before the store is queried.
func (s *AuthService) Login(ctx context.Context, rawSecret string) (*LoginResult, error) {
	if err := tokens.ValidateFormat(rawSecret); err != nil {
		return nil, err
	}

	candidates, err := s.userRepo.FindByPrefix(ctx, tokens.Prefix(rawSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	var matched *models.User
	for i := range candidates {
		if s.hasher.Compare(candidates[i].SecretHash, rawSecret) {
			matched = &candidates[i]
			break
		}
	}
	if len(candidates) == 0 {
		// Spend one comparison anyway so an unknown prefix answers about as
		// slowly as a wrong secret.
		s.hasher.Compare(s.dummy(), rawSecret)
	}
	if matched == nil {
		return nil, apperrors.ErrInvalidCredential
	}

	user, err := applyActivity(ctx, s.userRepo, matched, s.today(), models.Stats{})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.Int("streak", user.Streak.Current))
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a session credential to the current user record.
// A deleted user yields apperrors.ErrNotFound.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	userID, err := s.issuer.Parse(token)
	if err != nil {
		return Identity{}, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Identity{}, err
	}
	return IdentityOf(user), nil
}

func (s *AuthService) today() time.Time {
	return streak.DayOf(s.now(), s.location)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		secret, err := tokens.NewSecret()
		if err == nil {
			s.dummyHash, _ = s.hasher.Hash(secret)
		}
	})
	return s.dummyHash
}
