package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gametracker/internal/models"
	"gametracker/internal/repository"
	"gametracker/internal/validation"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrForbidden       = errors.New("not allowed")
	ErrInUse           = errors.New("still referenced")
	ErrUnauthenticated = errors.New("not authenticated")
)

// UserService handles player registration and profile changes
type UserService struct {
	userRepo *repository.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Register creates a player with the given username
func (s *UserService) Register(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, username)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser retrieves a player by ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns every player ordered by username
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Rename changes a player's username. Players may only rename themselves.
func (s *UserService) Rename(ctx context.Context, actorID, id int64, username string) (*models.User, error) {
	if actorID != id {
		if _, err := s.GetUser(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrForbidden
	}

	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateUsername(ctx, id, username)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rename user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteUser removes a player's own account. Players who still own games
// or appear in results cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id int64) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if actorID != id {
		return ErrForbidden
	}

	deleted, err := s.userRepo.DeleteUser(ctx, id)
	if errors.Is(err, repository.ErrReferenced) {
		return ErrInUse
	}
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
