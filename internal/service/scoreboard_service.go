package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gametracker/internal/models"
	"gametracker/internal/repository"
	"gametracker/internal/scoreboard"
	"gametracker/internal/validation"
)

const (
	DefaultTopLimit    = 10
	MaxTopLimit        = 100
	ProfileRecentLimit = 10
)

// GameAvailability is one entry of the global scoreboard's game list
type GameAvailability struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Type          models.GameType `json:"type"`
	TotalGames    int             `json:"total_games"`
	UniquePlayers int             `json:"unique_players"`
}

// ScoreboardSummary totals the global scoreboard
type ScoreboardSummary struct {
	TotalPlayers     int                `json:"total_players"`
	TotalGamesPlayed int                `json:"total_games_played"`
	GamesAvailable   []GameAvailability `json:"games_available"`
}

// GlobalScoreboard ranks every player across all games
type GlobalScoreboard struct {
	Players []models.PlayerStats `json:"players"`
	Summary ScoreboardSummary    `json:"summary"`
}

// GameScoreboard ranks the players of one game
type GameScoreboard struct {
	GameID   int64                `json:"game_id"`
	GameName string               `json:"game_name"`
	Players  []models.PlayerStats `json:"players"`
}

// PlayerProfile is a player's overall record with a per-game breakdown
type PlayerProfile struct {
	Player        *models.User             `json:"player"`
	Stats         models.PlayerStats       `json:"stats"`
	Games         []models.PlayerGameStats `json:"games"`
	RecentResults []models.ResultSummary   `json:"recent_results"`
}

// ScoreboardService computes scoreboards on demand from stored results
type ScoreboardService struct {
	resultRepo *repository.ResultRepository
	gameRepo   *repository.GameRepository
	userRepo   *repository.UserRepository
	logger     *slog.Logger
}

// NewScoreboardService creates a new scoreboard service
func NewScoreboardService(resultRepo *repository.ResultRepository, gameRepo *repository.GameRepository, userRepo *repository.UserRepository, logger *slog.Logger) *ScoreboardService {
	return &ScoreboardService{
		resultRepo: resultRepo,
		gameRepo:   gameRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Global ranks every player across every game
func (s *ScoreboardService) Global(ctx context.Context) (*GlobalScoreboard, error) {
	rows, err := s.resultRepo.ListParticipations(ctx, models.ResultFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	games, err := s.gameRepo.ListGames(ctx, models.GameFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	players := scoreboard.Aggregate(rows)
	total := 0
	for _, p := range players {
		total += p.GamesPlayed
	}

	byGame := scoreboard.GroupByGame(rows)
	available := make([]GameAvailability, 0, len(games))
	for _, g := range games {
		gs := scoreboard.SummarizeGame(g, byGame[g.ID])
		available = append(available, GameAvailability{
			ID:            g.ID,
			Name:          g.Name,
			Type:          g.Type,
			TotalGames:    gs.TotalPlays,
			UniquePlayers: gs.UniquePlayers,
		})
	}
	// games arrive ordered by name, which breaks ties
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].TotalGames > available[j].TotalGames
	})

	s.logger.Debug("global scoreboard computed", "players", len(players), "participations", len(rows))

	return &GlobalScoreboard{
		Players: players,
		Summary: ScoreboardSummary{
			TotalPlayers:     len(players),
			TotalGamesPlayed: total,
			GamesAvailable:   available,
		},
	}, nil
}

// ForGame ranks the players of a single game
func (s *ScoreboardService) ForGame(ctx context.Context, gameID int64) (*GameScoreboard, error) {
	game, err := s.gameRepo.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	rows, err := s.resultRepo.ListParticipations(ctx, models.ResultFilter{GameID: gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	return &GameScoreboard{
		GameID:   game.ID,
		GameName: game.Name,
		Players:  scoreboard.Aggregate(rows),
	}, nil
}

// TopPlayers returns the best players by key. limit <= 0 means the default.
func (s *ScoreboardService) TopPlayers(ctx context.Context, key scoreboard.SortKey, limit int) ([]models.PlayerStats, error) {
	if key == "" {
		key = scoreboard.SortByWinRate
	}
	if !key.Valid() {
		return nil, validation.ValidationError{Field: "sortBy", Message: "sortBy must be winRate or wins"}
	}
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > MaxTopLimit {
		limit = MaxTopLimit
	}

	rows, err := s.resultRepo.ListParticipations(ctx, models.ResultFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return scoreboard.Top(scoreboard.Aggregate(rows), key, limit), nil
}

// GameStats summarises play for every game, ordered by name
func (s *ScoreboardService) GameStats(ctx context.Context) ([]models.GameStats, error) {
	games, err := s.gameRepo.ListGames(ctx, models.GameFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	rows, err := s.resultRepo.ListParticipations(ctx, models.ResultFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	byGame := scoreboard.GroupByGame(rows)
	stats := make([]models.GameStats, 0, len(games))
	for _, g := range games {
		stats = append(stats, scoreboard.SummarizeGame(g, byGame[g.ID]))
	}
	return stats, nil
}

// Profile returns a player's overall stats, per-game breakdown and most
// recent results
func (s *ScoreboardService) Profile(ctx context.Context, userID int64) (*PlayerProfile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	rows, err := s.resultRepo.ListParticipations(ctx, models.ResultFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	games, err := s.gameRepo.ListGames(ctx, models.GameFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	names := make(map[int64]string, len(games))
	for _, g := range games {
		names[g.ID] = g.Name
	}

	stats := models.PlayerStats{PlayerID: user.ID, Username: user.Username}
	if agg := scoreboard.Aggregate(rows); len(agg) == 1 {
		stats = agg[0]
		stats.Username = user.Username
	}

	recent, err := s.resultRepo.ListResults(ctx, models.ResultFilter{UserID: userID, Limit: ProfileRecentLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent results: %w", err)
	}
	summaries := make([]models.ResultSummary, 0, len(recent))
	for i := range recent {
		summaries = append(summaries, summarize(&recent[i]))
	}

	return &PlayerProfile{
		Player:        user,
		Stats:         stats,
		Games:         scoreboard.PlayerBreakdown(rows, userID, names),
		RecentResults: summaries,
	}, nil
}
