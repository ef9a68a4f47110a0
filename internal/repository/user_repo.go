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

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user. A taken username yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, username string) (*models.User, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (username, created_at, updated_at)
		VALUES (?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, username, now, now)
	if err != nil {
		return nil, wrapError(r.db.Dialect, "create user", err)
	}

	return &models.User{
		ID:        id,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetUserByID retrieves a user by ID. Returns nil, nil when absent.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by exact username. Returns nil, nil when absent.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, created_at, updated_at
		FROM users
		WHERE username = ?
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers retrieves all users ordered by username
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, created_at, updated_at
		FROM users
		ORDER BY username
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUsersByIDs loads the users with the given ids, keyed by id. Unknown ids
// are simply missing from the map.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	users := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query := `
		SELECT id, username, created_at, updated_at
		FROM users
		WHERE id IN (` + placeholders(len(ids)) + `)
	`
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// UpdateUsername renames a user. Returns nil, nil when the user does not exist.
func (r *UserRepository) UpdateUsername(ctx context.Context, id int64, username string) (*models.User, error) {
	query := "UPDATE users SET username = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, username, time.Now().UTC(), id)
	if err != nil {
		return nil, wrapError(r.db.Dialect, "update user", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetUserByID(ctx, id)
}

// DeleteUser removes a user and, by cascade, their sessions. Users still
// referenced by games or results yield ErrReferenced.
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, wrapError(r.db.Dialect, "delete user", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return n > 0, nil
}

// CreateSession stores a session under the hash of its token
func (r *UserRepository) CreateSession(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) (*models.Session, error) {
	now := time.Now().UTC()
	expiresAt = expiresAt.UTC()
	query := `
		INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, tokenHash, userID, expiresAt, now)
	if err != nil {
		return nil, wrapError(r.db.Dialect, "create session", err)
	}

	return &models.Session{
		ID:        id,
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// GetSessionByTokenHash retrieves a session whether or not it has expired.
// Returns nil, nil when absent.
func (r *UserRepository) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := `
		SELECT id, token_hash, user_id, expires_at, created_at
		FROM sessions
		WHERE token_hash = ?
	`
	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID,
		&session.TokenHash,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSessionByTokenHash removes a session; deleting a missing one is not an error
func (r *UserRepository) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session with expires_at <= now and
// reports how many were deleted
func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	return n, nil
}
