package db

import (
	"database/sql"
	"fmt"
	"time"
)

// LoginLog represents a sign-in audit entry. Rows are insert-only and record
// the role as a snapshot at login time, not a live reference.
type LoginLog struct {
	ID      int64     `json:"id"`
	UserID  string    `json:"user_id,omitempty"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	LoginAt time.Time `json:"login_at"`
}

// RecordLogin appends a sign-in audit entry.
func (s *Store) RecordLogin(l *LoginLog) error {
	result, err := s.Exec(`
		INSERT INTO login_logs (user_id, email, role)
		VALUES (?, ?, ?)
	`, l.UserID, l.Email, l.Role)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		l.ID = id
	}
	return nil
}

// ListLoginLogs returns all sign-in entries, most recent first.
func (s *Store) ListLoginLogs() ([]*LoginLog, error) {
	rows, err := s.Query(`
		SELECT id, user_id, email, role, login_at
		FROM login_logs
		ORDER BY login_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list login logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []*LoginLog
	for rows.Next() {
		var l LoginLog
		var userID, role sql.NullString
		var loginAt string

		if err := rows.Scan(&l.ID, &userID, &l.Email, &role, &loginAt); err != nil {
			return nil, fmt.Errorf("scan login log: %w", err)
		}

		l.UserID = userID.String
		l.Role = role.String
		l.LoginAt = parseTime(loginAt)

		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate login logs: %w", err)
	}

	return logs, nil
}
