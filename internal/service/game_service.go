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

var ErrGameNotFound = errors.New("game not found")

// GameInput carries the fields of a new game
type GameInput struct {
	Name     string
	Type     models.GameType
	ImageURL string
}

// GameUpdate carries optional changes to a game; nil fields are left alone
type GameUpdate struct {
	Name     *string
	Type     *models.GameType
	ImageURL *string
}

// GameService handles the game catalogue
type GameService struct {
	gameRepo *repository.GameRepository
	logger   *slog.Logger
}

// NewGameService creates a new game service
func NewGameService(gameRepo *repository.GameRepository, logger *slog.Logger) *GameService {
	return &GameService{gameRepo: gameRepo, logger: logger}
}

// CreateGame registers a game owned by creatorID
func (s *GameService) CreateGame(ctx context.Context, creatorID int64, input GameInput) (*models.Game, error) {
	game := &models.Game{
		Name:      strings.TrimSpace(input.Name),
		Type:      models.GameType(strings.ToLower(strings.TrimSpace(string(input.Type)))),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		CreatedBy: creatorID,
	}
	if err := validateGame(game); err != nil {
		return nil, err
	}

	if err := s.gameRepo.CreateGame(ctx, game); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	s.logger.Info("game created", "game_id", game.ID, "created_by", creatorID)
	return game, nil
}

func validateGame(game *models.Game) error {
	if err := validation.ValidateGameName(game.Name); err != nil {
		return err
	}
	if err := validation.ValidateGameType(game.Type); err != nil {
		return err
	}
	return validation.ValidateImageURL(game.ImageURL)
}

// GetGame retrieves a game by ID
func (s *GameService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	game, err := s.gameRepo.GetGameByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListGames returns games matching filter
func (s *GameService) ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	if filter.Type != "" {
		if err := validation.ValidateGameType(filter.Type); err != nil {
			return nil, err
		}
	}
	games, err := s.gameRepo.ListGames(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

// UpdateGame applies update to a game. Only the creator may change it.
func (s *GameService) UpdateGame(ctx context.Context, actorID, id int64, update GameUpdate) (*models.Game, error) {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.CreatedBy != actorID {
		return nil, ErrForbidden
	}

	if update.Name != nil {
		game.Name = strings.TrimSpace(*update.Name)
	}
	if update.Type != nil {
		game.Type = models.GameType(strings.ToLower(strings.TrimSpace(string(*update.Type))))
	}
	if update.ImageURL != nil {
		game.ImageURL = strings.TrimSpace(*update.ImageURL)
	}
	if err := validateGame(game); err != nil {
		return nil, err
	}

	ok, err := s.gameRepo.UpdateGame(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	if !ok {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// DeleteGame removes a game with its results and play sessions. Only the
// creator may delete it.
func (s *GameService) DeleteGame(ctx context.Context, actorID, id int64) error {
	game, err := s.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if game.CreatedBy != actorID {
		return ErrForbidden
	}

	ok, err := s.gameRepo.DeleteGame(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if !ok {
		return ErrGameNotFound
	}

	s.logger.Info("game deleted", "game_id", id, "deleted_by", actorID)
	return nil
}
