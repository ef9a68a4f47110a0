package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gametracker/internal/database"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	DatabaseType string              `json:"database_type"`
	Users        []UserBackup        `json:"users"`
	Games        []GameBackup        `json:"games"`
	PlaySessions []PlaySessionBackup `json:"play_sessions"`
	Results      []ResultBackup      `json:"results"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GameBackup represents a game record for backup
type GameBackup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaySessionBackup represents a play session for backup
type PlaySessionBackup struct {
	ID           int64      `json:"id"`
	GameID       int64      `json:"game_id"`
	StartedBy    int64      `json:"started_by"`
	Player1ID    int64      `json:"player1_id"`
	Player2ID    int64      `json:"player2_id"`
	TotalRounds  int        `json:"total_rounds"`
	CurrentRound int        `json:"current_round"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// ResultBackup represents a match result with its participants
type ResultBackup struct {
	ID            int64                `json:"id"`
	GameID        int64                `json:"game_id"`
	PlaySessionID *int64               `json:"play_session_id,omitempty"`
	PlayedAt      time.Time            `json:"played_at"`
	Notes         string               `json:"notes,omitempty"`
	RecordedBy    int64                `json:"recorded_by"`
	CreatedAt     time.Time            `json:"created_at"`
	Players       []ResultPlayerBackup `json:"players"`
}

// ResultPlayerBackup represents one participant of a result
type ResultPlayerBackup struct {
	UserID   int64   `json:"user_id"`
	Score    float64 `json:"score"`
	IsWinner bool    `json:"is_winner"`
}

// backupTables lists tables in dependency order; clearing walks it backwards
var backupTables = []string{
	"users",
	"sessions",
	"games",
	"play_sessions",
	"game_results",
	"game_result_players",
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *slog.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export writes a complete backup of the database to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) (*BackupData, error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return nil, err
	}
	if err := file.Sync(); err != nil {
		return nil, fmt.Errorf("failed to flush output file: %w", err)
	}

	s.logger.Info("database exported",
		"path", outputPath,
		"users", len(backup.Users),
		"games", len(backup.Games),
		"play_sessions", len(backup.PlaySessions),
		"results", len(backup.Results),
	)
	return backup, nil
}

// ExportToWriter encodes a complete backup as indented JSON into w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.MigrationsSubdir(),
		Users:        []UserBackup{},
		Games:        []GameBackup{},
		PlaySessions: []PlaySessionBackup{},
		Results:      []ResultBackup{},
	}

	if err := s.exportUsers(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportGames(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export games: %w", err)
	}
	if err := s.exportPlaySessions(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export play sessions: %w", err)
	}
	if err := s.exportResults(ctx, backup); err != nil {
		return nil, fmt.Errorf("failed to export results: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a backup file. With replace set, existing rows are removed
// first; otherwise the backup is merged and id collisions fail the import.
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, replace)
}

// ImportFromReader restores a backup read from r in a single transaction
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, replace bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("importing backup", "version", backup.Version, "exported_at", backup.ExportedAt, "replace", replace)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if replace {
			if err := clearTables(ctx, tx); err != nil {
				return err
			}
		}
		if err := importUsers(ctx, tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if err := importGames(ctx, tx, backup.Games); err != nil {
			return fmt.Errorf("failed to import games: %w", err)
		}
		if err := importPlaySessions(ctx, tx, backup.PlaySessions); err != nil {
			return fmt.Errorf("failed to import play sessions: %w", err)
		}
		if err := importResults(ctx, tx, backup.Results); err != nil {
			return fmt.Errorf("failed to import results: %w", err)
		}
		return resetSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	s.logger.Info("database import completed",
		"users", len(backup.Users),
		"games", len(backup.Games),
		"play_sessions", len(backup.PlaySessions),
		"results", len(backup.Results),
	)
	return nil
}

// Clear deletes every row of every application table
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		return clearTables(ctx, tx)
	})
}

func clearTables(ctx context.Context, q database.DBTX) error {
	for i := len(backupTables) - 1; i >= 0; i-- {
		table := backupTables[i]
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

func resetSequences(ctx context.Context, q database.DBTX) error {
	for _, table := range []string{"users", "games", "play_sessions", "game_results"} {
		query := q.GetDialect().ResetSequenceQuery(table)
		if query == "" {
			continue
		}
		if _, err := q.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}

func (s *BackupService) exportUsers(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username, created_at, updated_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportGames(ctx context.Context, backup *BackupData) error {
	query := "SELECT id, name, type, COALESCE(image_url, ''), created_by, created_at, updated_at FROM games ORDER BY id"
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GameBackup
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &g.ImageURL, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		backup.Games = append(backup.Games, g)
	}
	return rows.Err()
}

func (s *BackupService) exportPlaySessions(ctx context.Context, backup *BackupData) error {
	query := `SELECT id, game_id, started_by, player1_id, player2_id, total_rounds, current_round,
		status, created_at, completed_at FROM play_sessions ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PlaySessionBackup
		var completedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.GameID, &p.StartedBy, &p.Player1ID, &p.Player2ID,
			&p.TotalRounds, &p.CurrentRound, &p.Status, &p.CreatedAt, &completedAt); err != nil {
			return err
		}
		if completedAt.Valid {
			p.CompletedAt = &completedAt.Time
		}
		backup.PlaySessions = append(backup.PlaySessions, p)
	}
	return rows.Err()
}

func (s *BackupService) exportResults(ctx context.Context, backup *BackupData) error {
	query := `SELECT id, game_id, play_session_id, played_at, COALESCE(notes, ''), recorded_by, created_at
		FROM game_results ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := make(map[int64]int)
	for rows.Next() {
		var r ResultBackup
		var sessionID sql.NullInt64
		if err := rows.Scan(&r.ID, &r.GameID, &sessionID, &r.PlayedAt, &r.Notes, &r.RecordedBy, &r.CreatedAt); err != nil {
			return err
		}
		if sessionID.Valid {
			r.PlaySessionID = &sessionID.Int64
		}
		r.Players = []ResultPlayerBackup{}
		index[r.ID] = len(backup.Results)
		backup.Results = append(backup.Results, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	playerRows, err := s.db.QueryContext(ctx,
		"SELECT result_id, user_id, score, is_winner FROM game_result_players ORDER BY result_id, user_id")
	if err != nil {
		return err
	}
	defer playerRows.Close()

	for playerRows.Next() {
		var resultID int64
		var p ResultPlayerBackup
		if err := playerRows.Scan(&resultID, &p.UserID, &p.Score, &p.IsWinner); err != nil {
			return err
		}
		if i, ok := index[resultID]; ok {
			backup.Results[i].Players = append(backup.Results[i].Players, p)
		}
	}
	return playerRows.Err()
}

func importUsers(ctx context.Context, q database.DBTX, users []UserBackup) error {
	query := "INSERT INTO users (id, username, created_at, updated_at) VALUES (?, ?, ?, ?)"
	for _, u := range users {
		if _, err := q.ExecContext(ctx, query, u.ID, u.Username, u.CreatedAt.UTC(), u.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func importGames(ctx context.Context, q database.DBTX, games []GameBackup) error {
	query := "INSERT INTO games (id, name, type, image_url, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for _, g := range games {
		if _, err := q.ExecContext(ctx, query, g.ID, g.Name, g.Type, nullIfEmpty(g.ImageURL), g.CreatedBy, g.CreatedAt.UTC(), g.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to import game %d: %w", g.ID, err)
		}
	}
	return nil
}

func importPlaySessions(ctx context.Context, q database.DBTX, sessions []PlaySessionBackup) error {
	query := `INSERT INTO play_sessions (id, game_id, started_by, player1_id, player2_id, total_rounds,
		current_round, status, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range sessions {
		var completedAt any
		if p.CompletedAt != nil {
			completedAt = p.CompletedAt.UTC()
		}
		if _, err := q.ExecContext(ctx, query, p.ID, p.GameID, p.StartedBy, p.Player1ID, p.Player2ID,
			p.TotalRounds, p.CurrentRound, p.Status, p.CreatedAt.UTC(), completedAt); err != nil {
			return fmt.Errorf("failed to import play session %d: %w", p.ID, err)
		}
	}
	return nil
}

func importResults(ctx context.Context, q database.DBTX, results []ResultBackup) error {
	resultQuery := `INSERT INTO game_results (id, game_id, play_session_id, played_at, notes, recorded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	playerQuery := "INSERT INTO game_result_players (result_id, user_id, score, is_winner) VALUES (?, ?, ?, ?)"

	for _, r := range results {
		var sessionID any
		if r.PlaySessionID != nil {
			sessionID = *r.PlaySessionID
		}
		if _, err := q.ExecContext(ctx, resultQuery, r.ID, r.GameID, sessionID, r.PlayedAt.UTC(),
			nullIfEmpty(r.Notes), r.RecordedBy, r.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to import result %d: %w", r.ID, err)
		}
		for _, p := range r.Players {
			if _, err := q.ExecContext(ctx, playerQuery, r.ID, p.UserID, p.Score, p.IsWinner); err != nil {
				return fmt.Errorf("failed to import player %d of result %d: %w", p.UserID, r.ID, err)
			}
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
