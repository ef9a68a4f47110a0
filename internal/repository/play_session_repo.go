package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gametracker/internal/database"
	"gametracker/internal/models"
)

// PlaySessionRepository handles database operations for round-based play sessions
type PlaySessionRepository struct {
	db *database.DB
}

// NewPlaySessionRepository creates a new play session repository
func NewPlaySessionRepository(db *database.DB) *PlaySessionRepository {
	return &PlaySessionRepository{db: db}
}

const playSessionColumns = `id, game_id, started_by, player1_id, player2_id, total_rounds,
	current_round, status, created_at, completed_at`

func scanPlaySession(scanner interface{ Scan(...any) error }) (*models.PlaySession, error) {
	s := &models.PlaySession{}
	var status string
	var completedAt sql.NullTime
	err := scanner.Scan(
		&s.ID,
		&s.GameID,
		&s.StartedBy,
		&s.Player1ID,
		&s.Player2ID,
		&s.TotalRounds,
		&s.CurrentRound,
		&status,
		&s.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = models.PlaySessionStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return s, nil
}

// Create inserts a play session and fills in its ID and CreatedAt
func (r *PlaySessionRepository) Create(ctx context.Context, s *models.PlaySession) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO play_sessions (game_id, started_by, player1_id, player2_id, total_rounds, current_round, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		s.GameID, s.StartedBy, s.Player1ID, s.Player2ID, s.TotalRounds, s.CurrentRound, string(s.Status), now)
	if err != nil {
		return wrapError(r.db.Dialect, "create play session", err)
	}
	s.ID = id
	s.CreatedAt = now
	return nil
}

// GetByID retrieves a play session. Returns nil, nil when absent.
func (r *PlaySessionRepository) GetByID(ctx context.Context, id int64) (*models.PlaySession, error) {
	query := "SELECT " + playSessionColumns + " FROM play_sessions WHERE id = ?"
	s, err := scanPlaySession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get play session: %w", err)
	}
	return s, nil
}

// ListByGame returns a game's play sessions newest first
func (r *PlaySessionRepository) ListByGame(ctx context.Context, gameID int64) ([]models.PlaySession, error) {
	query := "SELECT " + playSessionColumns + " FROM play_sessions WHERE game_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query play sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.PlaySession{}
	for rows.Next() {
		s, err := scanPlaySession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Update saves status, current_round and completed_at
func (r *PlaySessionRepository) Update(ctx context.Context, s *models.PlaySession) error {
	return updatePlaySession(ctx, r.db, s)
}

func updatePlaySession(ctx context.Context, q database.DBTX, s *models.PlaySession) error {
	var completedAt sql.NullTime
	if s.CompletedAt != nil {
		completedAt = sql.NullTime{Time: s.CompletedAt.UTC(), Valid: true}
	}
	query := "UPDATE play_sessions SET status = ?, current_round = ?, completed_at = ? WHERE id = ?"
	if _, err := q.ExecContext(ctx, query, string(s.Status), s.CurrentRound, completedAt, s.ID); err != nil {
		return fmt.Errorf("failed to update play session: %w", err)
	}
	return nil
}

// RecordRound stores a round result and the session's new state atomically
func (r *PlaySessionRepository) RecordRound(ctx context.Context, s *models.PlaySession, result *models.GameResult) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := insertResult(ctx, tx, result); err != nil {
			return err
		}
		return updatePlaySession(ctx, tx, s)
	})
}
