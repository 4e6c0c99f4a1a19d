package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/OnlyTachi/personal-finance-manager/internal/apperrors"
	"github.com/OnlyTachi/personal-finance-manager/internal/model"
)

// UserRepository provides data access methods for the user and session tables.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUser retrieves a user by username.
// Returns apperrors.ErrUserNotFound when no row matches.
func (s *UserRepository) GetUser(username string) (model.User, error) {
	var u model.User
	var createdAtStr string

	err := s.db.QueryRow(
		`SELECT username, password_hash, created_at FROM user WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.PasswordHash, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user table results: %w", err)
	}

	u.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListUsernames returns every registered username. Used by the scheduled
// jobs that run per user.
func (s *UserRepository) ListUsernames() ([]string, error) {
	rows, err := s.db.Query(`SELECT username FROM user ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user table: %w", err)
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan user results: %w", err)
		}
		usernames = append(usernames, username)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user table: %w", err)
	}
	return usernames, nil
}

// InsertUser stores a new user.
func (s *UserRepository) InsertUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user (username, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, FormatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// InsertSession records an issued session token.
func (s *UserRepository) InsertSession(ctx context.Context, sess *model.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, username, token, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, sess.ID, sess.Username, sess.Token, FormatTime(sess.IssuedAt), FormatTime(sess.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSessionByToken retrieves a non-revoked session for the given token.
// Returns apperrors.ErrSessionNotFound for unknown or revoked tokens.
func (s *UserRepository) GetSessionByToken(token string) (model.Session, error) {
	var sess model.Session
	var issuedStr, expiresStr string
	var revokedStr sql.NullString

	err := s.db.QueryRow(`
		SELECT id, username, token, issued_at, expires_at, revoked_at
		FROM session
		WHERE token = ?
	`, token).Scan(&sess.ID, &sess.Username, &sess.Token, &issuedStr, &expiresStr, &revokedStr)
	if err == sql.ErrNoRows {
		return model.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to scan session table results: %w", err)
	}

	sess.IssuedAt, err = ParseTime(issuedStr)
	if err != nil {
		return model.Session{}, err
	}
	sess.ExpiresAt, err = ParseTime(expiresStr)
	if err != nil {
		return model.Session{}, err
	}
	if revokedStr.Valid {
		revoked, err := ParseTime(revokedStr.String)
		if err != nil {
			return model.Session{}, err
		}
		sess.RevokedAt = &revoked
	}

	return sess, nil
}

// RevokeSession marks a session as revoked. Revoking twice is a no-op.
func (s *UserRepository) RevokeSession(ctx context.Context, sessionID string, revokedAt string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE session SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		revokedAt, sessionID)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		// Either unknown or already revoked; both are acceptable for sign-out.
		return nil
	}
	return nil
}
