package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// Activity represents an append-only audit trail entry.
type Activity struct {
	ID           int64                `json:"id"`
	UserName     string               `json:"user_name"`
	Action       string               `json:"action"`
	Description  string               `json:"description,omitempty"`
	ActivityType tracker.ActivityType `json:"activity_type"`
	CreatedAt    time.Time            `json:"created_at"`
}

// RecordActivity appends an entry to the activity trail.
func (s *Store) RecordActivity(a *Activity) error {
	result, err := s.Exec(`
		INSERT INTO activities (user_name, action, description, activity_type)
		VALUES (?, ?, ?, ?)
	`, a.UserName, a.Action, a.Description, a.ActivityType)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

// ListRecentActivities returns the most recent entries, newest first.
func (s *Store) ListRecentActivities(limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.Query(`
		SELECT id, user_name, action, description, activity_type, created_at
		FROM activities
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []*Activity
	for rows.Next() {
		var a Activity
		var description sql.NullString
		var createdAt string

		if err := rows.Scan(&a.ID, &a.UserName, &a.Action, &description, &a.ActivityType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		a.Description = description.String
		a.CreatedAt = parseTime(createdAt)

		activities = append(activities, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return activities, nil
}

// CountActivities returns the total number of activity entries.
func (s *Store) CountActivities() (int, error) {
	var n int
	if err := s.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}
