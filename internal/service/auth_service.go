package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gametracker/internal/models"
	"gametracker/internal/repository"
	"gametracker/internal/security"
	"gametracker/internal/validation"
)

// AuthService handles login sessions
type AuthService struct {
	userRepo        *repository.UserRepository
	sessionDuration time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, sessionDuration time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		sessionDuration: sessionDuration,
		logger:          logger,
		now:             time.Now,
	}
}

// Login opens a session for an existing player. The returned token is the
// cookie value; only its hash is persisted.
func (s *AuthService) Login(ctx context.Context, username string) (string, *models.Session, *models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, nil, validation.ValidationError{Field: "username", Message: "Username is required"}
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return "", nil, nil, ErrUserNotFound
	}

	token := security.GenerateSessionToken()
	expiresAt := s.now().UTC().Add(s.sessionDuration)
	session, err := s.userRepo.CreateSession(ctx, security.HashSessionToken(token), user.ID, expiresAt)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, session, user, nil
}

// ValidateSession resolves a cookie token to its player. Missing, unknown
// and expired tokens all yield ErrUnauthenticated, as does any store
// failure, which is logged.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := s.userRepo.GetSessionByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		s.logger.Error("session lookup failed", "error", err)
		return nil, ErrUnauthenticated
	}
	if session == nil || !s.now().Before(session.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		s.logger.Error("session user lookup failed", "error", err, "user_id", session.UserID)
		return nil, ErrUnauthenticated
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Logout deletes the session behind token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.userRepo.DeleteSessionByTokenHash(ctx, security.HashSessionToken(token)); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions and reports how many went
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.userRepo.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}
