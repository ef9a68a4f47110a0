package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gametracker/internal/models"
	"gametracker/internal/repository"
	"gametracker/internal/validation"
)

var (
	ErrPlaySessionNotFound = errors.New("play session not found")
	ErrSessionNotActive    = errors.New("can only submit results for active sessions")
	ErrSessionFinished     = errors.New("play session is already finished")
)

// PlaySessionInput carries the setup of a new play session
type PlaySessionInput struct {
	Player1ID   int64
	Player2ID   int64
	TotalRounds int
}

// PlaySessionUpdate moves a play session to a new status
type PlaySessionUpdate struct {
	Status       models.PlaySessionStatus
	CurrentRound *int
}

// RoundInput carries the scores of one round
type RoundInput struct {
	Player1Score float64
	Player2Score float64
	Notes        string
}

// PlaySessionDetail is a play session with the rounds recorded so far
type PlaySessionDetail struct {
	Session *models.PlaySession `json:"session"`
	Results []models.GameResult `json:"results"`
}

// PlaySessionService runs round-based head-to-head matches
type PlaySessionService struct {
	sessionRepo *repository.PlaySessionRepository
	resultRepo  *repository.ResultRepository
	gameRepo    *repository.GameRepository
	userRepo    *repository.UserRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewPlaySessionService creates a new play session service
func NewPlaySessionService(
	sessionRepo *repository.PlaySessionRepository,
	resultRepo *repository.ResultRepository,
	gameRepo *repository.GameRepository,
	userRepo *repository.UserRepository,
	logger *slog.Logger,
) *PlaySessionService {
	return &PlaySessionService{
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		gameRepo:    gameRepo,
		userRepo:    userRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// StartSession sets up a play session for a game. Only the game's creator
// may start one.
func (s *PlaySessionService) StartSession(ctx context.Context, actorID, gameID int64, input PlaySessionInput) (*models.PlaySession, error) {
	game, err := s.gameRepo.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.CreatedBy != actorID {
		return nil, ErrForbidden
	}

	if input.Player1ID <= 0 || input.Player2ID <= 0 {
		return nil, validation.ValidationError{Field: "players", Message: "Both players are required"}
	}
	if input.Player1ID == input.Player2ID {
		return nil, validation.ValidationError{Field: "players", Message: "Players must be different"}
	}
	if err := validation.ValidateTotalRounds(input.TotalRounds); err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, []int64{input.Player1ID, input.Player2ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if len(users) != 2 {
		return nil, ErrUserNotFound
	}

	session := &models.PlaySession{
		GameID:      gameID,
		StartedBy:   actorID,
		Player1ID:   input.Player1ID,
		Player2ID:   input.Player2ID,
		TotalRounds: input.TotalRounds,
		Status:      models.PlaySessionSetup,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to start play session: %w", err)
	}

	s.logger.Info("play session created", "play_session_id", session.ID, "game_id", gameID, "rounds", session.TotalRounds)
	return session, nil
}

// ListSessions returns a game's play sessions newest first
func (s *PlaySessionService) ListSessions(ctx context.Context, gameID int64) ([]models.PlaySession, error) {
	game, err := s.gameRepo.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	sessions, err := s.sessionRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list play sessions: %w", err)
	}
	return sessions, nil
}

// GetSession returns a play session with its rounds in the order played
func (s *PlaySessionService) GetSession(ctx context.Context, id int64) (*PlaySessionDetail, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	results, err := s.resultRepo.ListResultsBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list session results: %w", err)
	}
	return &PlaySessionDetail{Session: session, Results: results}, nil
}

func (s *PlaySessionService) load(ctx context.Context, id int64) (*models.PlaySession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get play session: %w", err)
	}
	if session == nil {
		return nil, ErrPlaySessionNotFound
	}
	return session, nil
}

// UpdateStatus moves a play session along its lifecycle. Only the starter
// may change it and finished sessions stay finished.
func (s *PlaySessionService) UpdateStatus(ctx context.Context, actorID, id int64, update PlaySessionUpdate) (*models.PlaySession, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.StartedBy != actorID {
		return nil, ErrForbidden
	}

	status := models.PlaySessionStatus(strings.TrimSpace(string(update.Status)))
	if status == "" {
		return nil, validation.ValidationError{Field: "status", Message: "Status is required"}
	}
	if !status.Settable() {
		return nil, validation.ValidationError{Field: "status", Message: "Invalid status"}
	}
	if session.Status.Terminal() {
		return nil, ErrSessionFinished
	}

	if update.CurrentRound != nil {
		round := *update.CurrentRound
		if round < 0 || round > session.TotalRounds {
			return nil, validation.ValidationError{
				Field:   "current_round",
				Message: fmt.Sprintf("Current round must be between 0 and %d", session.TotalRounds),
			}
		}
		session.CurrentRound = round
	} else if status == models.PlaySessionInProgress && session.CurrentRound == 0 {
		session.CurrentRound = 1
	}

	session.Status = status
	if status == models.PlaySessionCompleted {
		completedAt := s.now().UTC()
		session.CompletedAt = &completedAt
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update play session: %w", err)
	}

	s.logger.Info("play session updated", "play_session_id", id, "status", status, "round", session.CurrentRound)
	return session, nil
}

// SubmitRound records one round of an in-progress session. The higher score
// wins; equal scores make both players winners. The session completes once
// its last round is in.
func (s *PlaySessionService) SubmitRound(ctx context.Context, actorID, id int64, input RoundInput) (*models.GameResult, bool, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if session.StartedBy != actorID {
		return nil, false, ErrForbidden
	}
	if session.Status != models.PlaySessionInProgress {
		return nil, false, ErrSessionNotActive
	}
	if err := validation.ValidateRoundScores(input.Player1Score, input.Player2Score); err != nil {
		return nil, false, err
	}
	if err := validation.ValidateNotes(input.Notes); err != nil {
		return nil, false, err
	}

	now := s.now().UTC()
	sessionID := session.ID
	result := &models.GameResult{
		GameID:        session.GameID,
		PlaySessionID: &sessionID,
		Players:       roundPlayers(session, input),
		PlayedAt:      now,
		Notes:         input.Notes,
		RecordedBy:    actorID,
	}

	if session.CurrentRound < 1 {
		session.CurrentRound = 1
	}
	completed := session.CurrentRound >= session.TotalRounds
	if completed {
		session.Status = models.PlaySessionCompleted
		session.CompletedAt = &now
	} else {
		session.CurrentRound++
	}

	if err := s.sessionRepo.RecordRound(ctx, session, result); err != nil {
		return nil, false, fmt.Errorf("failed to record round: %w", err)
	}

	s.logger.Info("round recorded",
		"play_session_id", id,
		"result_id", result.ID,
		"round", session.CurrentRound,
		"completed", completed,
	)

	stored, err := s.resultRepo.GetResultByID(ctx, result.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load recorded round: %w", err)
	}
	if stored == nil {
		return nil, false, ErrResultNotFound
	}
	return stored, completed, nil
}

func roundPlayers(session *models.PlaySession, input RoundInput) []models.PlayerResult {
	return []models.PlayerResult{
		{UserID: session.Player1ID, Score: input.Player1Score, IsWinner: input.Player1Score >= input.Player2Score},
		{UserID: session.Player2ID, Score: input.Player2Score, IsWinner: input.Player2Score >= input.Player1Score},
	}
}
