package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Comment represents an append-only discussion entry under a task.
// Comments are never updated or deleted.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Content   string    `json:"content"`
	UserName  string    `json:"user_name"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateComment appends a comment to a task's discussion.
func (s *Store) CreateComment(c *Comment) error {
	if c.ID == "" {
		c.ID = "CMT-" + uuid.New().String()[:8]
	}

	var imageURL *string
	if c.ImageURL != "" {
		imageURL = &c.ImageURL
	}

	_, err := s.Exec(`
		INSERT INTO comments (id, task_id, content, user_name, image_url)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.TaskID, c.Content, c.UserName, imageURL)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	created, err := s.GetComment(c.ID)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// GetComment retrieves a comment by ID. Returns (nil, nil) when not found.
func (s *Store) GetComment(id string) (*Comment, error) {
	row := s.QueryRow(`
		SELECT id, task_id, content, user_name, image_url, created_at
		FROM comments WHERE id = ?
	`, id)

	var c Comment
	var imageURL sql.NullString
	var createdAt string

	err := row.Scan(&c.ID, &c.TaskID, &c.Content, &c.UserName, &imageURL, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}

	c.ImageURL = imageURL.String
	c.CreatedAt = parseTime(createdAt)

	return &c, nil
}

// ListComments returns a task's comments in creation order.
func (s *Store) ListComments(taskID string) ([]*Comment, error) {
	rows, err := s.Query(`
		SELECT id, task_id, content, user_name, image_url, created_at
		FROM comments
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		var imageURL sql.NullString
		var createdAt string

		if err := rows.Scan(&c.ID, &c.TaskID, &c.Content, &c.UserName, &imageURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}

		c.ImageURL = imageURL.String
		c.CreatedAt = parseTime(createdAt)

		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}
