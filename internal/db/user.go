package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents an authentication identity.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents a bearer-token session.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUser inserts a new identity.
func (s *Store) CreateUser(u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	_, err := s.Exec(`
		INSERT INTO users (id, email, password_hash)
		VALUES (?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	created, err := s.GetUser(u.ID)
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetUser retrieves a user by ID. Returns (nil, nil) when not found.
func (s *Store) GetUser(id string) (*User, error) {
	row := s.QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email. Returns (nil, nil) when not found.
func (s *Store) GetUserByEmail(email string) (*User, error) {
	row := s.QueryRow(`
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = ?
	`, email)
	return scanUser(row)
}

// CreateSession inserts a session valid for the given duration and returns it.
func (s *Store) CreateSession(userID string, ttl time.Duration) (*Session, error) {
	token := uuid.New().String()
	expiresAt := time.Now().Add(ttl)

	_, err := s.Exec(`
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES (?, ?, ?)
	`, token, userID, formatTime(expiresAt))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

// GetSession retrieves a live session by token. Expired or unknown tokens
// return (nil, nil).
func (s *Store) GetSession(token string) (*Session, error) {
	row := s.QueryRow(`
		SELECT token, user_id, expires_at, created_at
		FROM sessions WHERE token = ?
	`, token)

	var sess Session
	var expiresAt, createdAt string

	err := row.Scan(&sess.Token, &sess.UserID, &expiresAt, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.ExpiresAt = parseTime(expiresAt)
	sess.CreatedAt = parseTime(createdAt)

	if time.Now().UTC().After(sess.ExpiresAt) {
		return nil, nil
	}

	return &sess, nil
}

// DeleteSession removes a session by token.
func (s *Store) DeleteSession(token string) error {
	_, err := s.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *Store) PurgeExpiredSessions() error {
	_, err := s.Exec(`DELETE FROM sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	return nil
}

// scanUser scans a single row into a User.
func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
