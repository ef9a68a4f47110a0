package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gametracker/internal/database"
	"gametracker/internal/models"
)

// ResultRepository handles database operations for match results
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// CreateResult stores a result and its participants in one transaction and
// fills in the result's ID and CreatedAt
func (r *ResultRepository) CreateResult(ctx context.Context, result *models.GameResult) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		return insertResult(ctx, tx, result)
	})
}

func insertResult(ctx context.Context, q database.DBTX, result *models.GameResult) error {
	now := time.Now().UTC()
	var sessionID sql.NullInt64
	if result.PlaySessionID != nil {
		sessionID = sql.NullInt64{Int64: *result.PlaySessionID, Valid: true}
	}

	query := `
		INSERT INTO game_results (game_id, play_session_id, played_at, notes, recorded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := q.ExecReturningID(ctx, query,
		result.GameID, sessionID, result.PlayedAt.UTC(), nullString(result.Notes), result.RecordedBy, now)
	if err != nil {
		return wrapError(q.GetDialect(), "create result", err)
	}

	if err := insertPlayers(ctx, q, id, result.Players); err != nil {
		return err
	}

	result.ID = id
	result.CreatedAt = now
	return nil
}

func insertPlayers(ctx context.Context, q database.DBTX, resultID int64, players []models.PlayerResult) error {
	query := `
		INSERT INTO game_result_players (result_id, user_id, score, is_winner)
		VALUES (?, ?, ?, ?)
	`
	for _, p := range players {
		if _, err := q.ExecContext(ctx, query, resultID, p.UserID, p.Score, p.IsWinner); err != nil {
			return wrapError(q.GetDialect(), "add result player", err)
		}
	}
	return nil
}

// GetResultByID retrieves a result with its players. Returns nil, nil when absent.
func (r *ResultRepository) GetResultByID(ctx context.Context, id int64) (*models.GameResult, error) {
	results, err := r.listResults(ctx, "r.id = ?", []any{id}, "r.id", 0)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// ListResults returns results matching filter newest first
func (r *ResultRepository) ListResults(ctx context.Context, filter models.ResultFilter) ([]models.GameResult, error) {
	var conditions []string
	var args []any

	if filter.GameID > 0 {
		conditions = append(conditions, "r.game_id = ?")
		args = append(args, filter.GameID)
	}
	if filter.UserID > 0 {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM game_result_players fp WHERE fp.result_id = r.id AND fp.user_id = ?)")
		args = append(args, filter.UserID)
	}

	return r.listResults(ctx, strings.Join(conditions, " AND "), args, "r.played_at DESC, r.id DESC", filter.Limit)
}

// ListResultsBySession returns a play session's rounds in the order played
func (r *ResultRepository) ListResultsBySession(ctx context.Context, sessionID int64) ([]models.GameResult, error) {
	return r.listResults(ctx, "r.play_session_id = ?", []any{sessionID}, "r.played_at, r.id", 0)
}

func (r *ResultRepository) listResults(ctx context.Context, where string, args []any, orderBy string, limit int) ([]models.GameResult, error) {
	query := `
		SELECT r.id, r.game_id, g.name, r.play_session_id, r.played_at,
		       COALESCE(r.notes, ''), r.recorded_by, r.created_at
		FROM game_results r
		JOIN games g ON g.id = r.game_id
	`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + orderBy
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.GameResult{}
	var ids []int64
	for rows.Next() {
		var res models.GameResult
		var sessionID sql.NullInt64
		if err := rows.Scan(
			&res.ID,
			&res.GameID,
			&res.GameName,
			&sessionID,
			&res.PlayedAt,
			&res.Notes,
			&res.RecordedBy,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if sessionID.Valid {
			id := sessionID.Int64
			res.PlaySessionID = &id
		}
		res.Players = []models.PlayerResult{}
		results = append(results, res)
		ids = append(ids, res.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	players, err := r.loadPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if ps, ok := players[results[i].ID]; ok {
			results[i].Players = ps
		}
	}
	return results, nil
}

func (r *ResultRepository) loadPlayers(ctx context.Context, resultIDs []int64) (map[int64][]models.PlayerResult, error) {
	players := make(map[int64][]models.PlayerResult)
	if len(resultIDs) == 0 {
		return players, nil
	}

	query := `
		SELECT p.result_id, p.user_id, u.username, p.score, p.is_winner
		FROM game_result_players p
		JOIN users u ON u.id = p.user_id
		WHERE p.result_id IN (` + placeholders(len(resultIDs)) + `)
		ORDER BY p.result_id, p.score DESC, p.user_id
	`
	rows, err := r.db.QueryContext(ctx, query, int64Args(resultIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query result players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resultID int64
		var p models.PlayerResult
		if err := rows.Scan(&resultID, &p.UserID, &p.Username, &p.Score, &p.IsWinner); err != nil {
			return nil, fmt.Errorf("failed to scan result player: %w", err)
		}
		players[resultID] = append(players[resultID], p)
	}
	return players, rows.Err()
}

// UpdateResult saves played_at and notes and, when replacePlayers is set,
// swaps the whole participant list. Returns false when the result is gone.
func (r *ResultRepository) UpdateResult(ctx context.Context, result *models.GameResult, replacePlayers bool) (bool, error) {
	found := false
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE game_results SET played_at = ?, notes = ? WHERE id = ?",
			result.PlayedAt.UTC(), nullString(result.Notes), result.ID)
		if err != nil {
			return wrapError(tx.GetDialect(), "update result", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update result: %w", err)
		}
		if n == 0 {
			return nil
		}
		found = true

		if !replacePlayers {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM game_result_players WHERE result_id = ?", result.ID); err != nil {
			return fmt.Errorf("failed to clear result players: %w", err)
		}
		return insertPlayers(ctx, tx, result.ID, result.Players)
	})
	return found, err
}

// DeleteResult removes a result and its participants
func (r *ResultRepository) DeleteResult(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM game_results WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete result: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete result: %w", err)
	}
	return n > 0, nil
}

// ListParticipations returns one row per player per result, optionally
// narrowed to a game and/or a player. Limit is ignored.
func (r *ResultRepository) ListParticipations(ctx context.Context, filter models.ResultFilter) ([]models.Participation, error) {
	query := `
		SELECT r.id, r.game_id, r.played_at, p.user_id, u.username, p.score, p.is_winner
		FROM game_result_players p
		JOIN game_results r ON r.id = p.result_id
		JOIN users u ON u.id = p.user_id
	`
	var conditions []string
	var args []any
	if filter.GameID > 0 {
		conditions = append(conditions, "r.game_id = ?")
		args = append(args, filter.GameID)
	}
	if filter.UserID > 0 {
		conditions = append(conditions, "p.user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.user_id, r.played_at DESC, r.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participations: %w", err)
	}
	defer rows.Close()

	participations := []models.Participation{}
	for rows.Next() {
		var p models.Participation
		if err := rows.Scan(&p.ResultID, &p.GameID, &p.PlayedAt, &p.UserID, &p.Username, &p.Score, &p.IsWinner); err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, p)
	}
	return participations, rows.Err()
}
