package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gametracker/internal/models"
	"gametracker/internal/repository"
	"gametracker/internal/validation"
)

var ErrResultNotFound = errors.New("result not found")

const (
	DefaultRecentLimit = 10
	MaxResultLimit     = 100
)

// ResultInput carries a new match result
type ResultInput struct {
	GameID   int64
	Players  []models.PlayerResult
	PlayedAt *time.Time
	Notes    string
}

// ResultUpdate carries optional changes to a result. A nil Players leaves
// the participants alone; a non-nil one replaces them all.
type ResultUpdate struct {
	Players  []models.PlayerResult
	PlayedAt *time.Time
	Notes    *string
}

// ResultQuery narrows a result listing
type ResultQuery struct {
	GameID int64
	UserID int64
	Recent bool
	Limit  int
}

// ResultService records and edits match results
type ResultService struct {
	resultRepo *repository.ResultRepository
	gameRepo   *repository.GameRepository
	userRepo   *repository.UserRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewResultService creates a new result service
func NewResultService(resultRepo *repository.ResultRepository, gameRepo *repository.GameRepository, userRepo *repository.UserRepository, logger *slog.Logger) *ResultService {
	return &ResultService{
		resultRepo: resultRepo,
		gameRepo:   gameRepo,
		userRepo:   userRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordResult stores a result recorded by recorderID
func (s *ResultService) RecordResult(ctx context.Context, recorderID int64, input ResultInput) (*models.GameResult, error) {
	now := s.now().UTC()
	playedAt := now
	if input.PlayedAt != nil {
		playedAt = input.PlayedAt.UTC()
	}

	if input.GameID <= 0 {
		return nil, validation.ValidationError{Field: "game_id", Message: "Game ID is required"}
	}
	if err := validation.ValidatePlayers(input.Players); err != nil {
		return nil, err
	}
	if err := validation.ValidatePlayedAt(playedAt, now); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	game, err := s.gameRepo.GetGameByID(ctx, input.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	players, err := s.resolvePlayers(ctx, input.Players)
	if err != nil {
		return nil, err
	}

	result := &models.GameResult{
		GameID:     game.ID,
		GameName:   game.Name,
		Players:    players,
		PlayedAt:   playedAt,
		Notes:      input.Notes,
		RecordedBy: recorderID,
	}
	if err := s.resultRepo.CreateResult(ctx, result); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	s.logger.Info("result recorded",
		"result_id", result.ID,
		"game_id", game.ID,
		"players", len(players),
		"recorded_by", recorderID,
	)
	return result, nil
}

// resolvePlayers checks every participant exists and fills in usernames
func (s *ResultService) resolvePlayers(ctx context.Context, players []models.PlayerResult) ([]models.PlayerResult, error) {
	ids := make([]int64, len(players))
	for i, p := range players {
		ids[i] = p.UserID
	}
	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}

	resolved := make([]models.PlayerResult, len(players))
	for i, p := range players {
		u, ok := users[p.UserID]
		if !ok {
			return nil, fmt.Errorf("player %d: %w", p.UserID, ErrUserNotFound)
		}
		p.Username = u.Username
		resolved[i] = p
	}
	return resolved, nil
}

// GetResult retrieves a result with its players
func (s *ResultService) GetResult(ctx context.Context, id int64) (*models.GameResult, error) {
	result, err := s.resultRepo.GetResultByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	if result == nil {
		return nil, ErrResultNotFound
	}
	return result, nil
}

// ListResults returns result summaries newest first
func (s *ResultService) ListResults(ctx context.Context, q ResultQuery) ([]models.ResultSummary, error) {
	limit := q.Limit
	if q.Recent && limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxResultLimit {
		limit = MaxResultLimit
	}

	results, err := s.resultRepo.ListResults(ctx, models.ResultFilter{GameID: q.GameID, UserID: q.UserID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	summaries := make([]models.ResultSummary, 0, len(results))
	for i := range results {
		summaries = append(summaries, summarize(&results[i]))
	}
	return summaries, nil
}

func summarize(r *models.GameResult) models.ResultSummary {
	winners := []string{}
	for _, p := range r.Winners() {
		winners = append(winners, p.Username)
	}
	return models.ResultSummary{
		ID:          r.ID,
		GameID:      r.GameID,
		GameName:    r.GameName,
		PlayerCount: len(r.Players),
		Winners:     winners,
		PlayedAt:    r.PlayedAt,
		Notes:       r.Notes,
	}
}

// UpdateResult applies update to a result. The recorder and the game's
// creator may edit it.
func (s *ResultService) UpdateResult(ctx context.Context, actorID, id int64, update ResultUpdate) (*models.GameResult, error) {
	result, err := s.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, result); err != nil {
		return nil, err
	}

	if update.PlayedAt != nil {
		playedAt := update.PlayedAt.UTC()
		if err := validation.ValidatePlayedAt(playedAt, s.now()); err != nil {
			return nil, err
		}
		result.PlayedAt = playedAt
	}
	if update.Notes != nil {
		if err := validation.ValidateNotes(*update.Notes); err != nil {
			return nil, err
		}
		result.Notes = *update.Notes
	}
	replace := update.Players != nil
	if replace {
		if err := validation.ValidatePlayers(update.Players); err != nil {
			return nil, err
		}
		players, err := s.resolvePlayers(ctx, update.Players)
		if err != nil {
			return nil, err
		}
		result.Players = players
	}

	ok, err := s.resultRepo.UpdateResult(ctx, result, replace)
	if err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update result: %w", err)
	}
	if !ok {
		return nil, ErrResultNotFound
	}
	return s.GetResult(ctx, id)
}

// DeleteResult removes a result. The recorder and the game's creator may
// delete it.
func (s *ResultService) DeleteResult(ctx context.Context, actorID, id int64) error {
	result, err := s.GetResult(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, result); err != nil {
		return err
	}

	ok, err := s.resultRepo.DeleteResult(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if !ok {
		return ErrResultNotFound
	}

	s.logger.Info("result deleted", "result_id", id, "deleted_by", actorID)
	return nil
}

func (s *ResultService) authorize(ctx context.Context, actorID int64, result *models.GameResult) error {
	if result.RecordedBy == actorID {
		return nil
	}
	game, err := s.gameRepo.GetGameByID(ctx, result.GameID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}
	if game != nil && game.CreatedBy == actorID {
		return nil
	}
	return ErrForbidden
}
