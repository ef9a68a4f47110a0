package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gametracker/internal/database"
	"gametracker/internal/models"
)

// GameRepository handles database operations for games
type GameRepository struct {
	db *database.DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = "id, name, type, COALESCE(image_url, ''), created_by, created_at, updated_at"

func scanGame(scanner interface{ Scan(...any) error }) (*models.Game, error) {
	game := &models.Game{}
	var gameType string
	err := scanner.Scan(
		&game.ID,
		&game.Name,
		&gameType,
		&game.ImageURL,
		&game.CreatedBy,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	game.Type = models.GameType(gameType)
	return game, nil
}

// CreateGame inserts game and fills in its ID and timestamps
func (r *GameRepository) CreateGame(ctx context.Context, game *models.Game) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO games (name, type, image_url, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		game.Name, string(game.Type), nullString(game.ImageURL), game.CreatedBy, now, now)
	if err != nil {
		return wrapError(r.db.Dialect, "create game", err)
	}

	game.ID = id
	game.CreatedAt = now
	game.UpdatedAt = now
	return nil
}

// GetGameByID retrieves a game. Returns nil, nil when absent.
func (r *GameRepository) GetGameByID(ctx context.Context, id int64) (*models.Game, error) {
	query := "SELECT " + gameColumns + " FROM games WHERE id = ?"
	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// ListGames returns games matching filter ordered by name
func (r *GameRepository) ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	var conditions []string
	var args []any

	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.CreatedBy > 0 {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}

	query := "SELECT " + gameColumns + " FROM games"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *game)
	}
	return games, rows.Err()
}

// UpdateGame saves name, type and image_url. Returns false when the game is gone.
func (r *GameRepository) UpdateGame(ctx context.Context, game *models.Game) (bool, error) {
	now := time.Now().UTC()
	query := "UPDATE games SET name = ?, type = ?, image_url = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query,
		game.Name, string(game.Type), nullString(game.ImageURL), now, game.ID)
	if err != nil {
		return false, wrapError(r.db.Dialect, "update game", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update game: %w", err)
	}
	if n > 0 {
		game.UpdatedAt = now
	}
	return n > 0, nil
}

// DeleteGame removes a game together with its results and play sessions
func (r *GameRepository) DeleteGame(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM games WHERE id = ?", id)
	if err != nil {
		return false, wrapError(r.db.Dialect, "delete game", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete game: %w", err)
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
