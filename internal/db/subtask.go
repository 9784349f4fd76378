package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subtask represents a checklist item under a task.
type Subtask struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSubtask inserts a new subtask under its parent task.
func (s *Store) CreateSubtask(st *Subtask) error {
	if st.ID == "" {
		st.ID = "ST-" + uuid.New().String()[:8]
	}

	_, err := s.Exec(`
		INSERT INTO subtasks (id, task_id, title, description, completed)
		VALUES (?, ?, ?, ?, ?)
	`, st.ID, st.TaskID, st.Title, st.Description, st.Completed)
	if err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}

	created, err := s.GetSubtask(st.ID)
	if err != nil {
		return err
	}
	*st = *created
	return nil
}

// GetSubtask retrieves a subtask by ID. Returns (nil, nil) when not found.
func (s *Store) GetSubtask(id string) (*Subtask, error) {
	row := s.QueryRow(`
		SELECT id, task_id, title, description, completed, created_at
		FROM subtasks WHERE id = ?
	`, id)

	return scanSubtask(row)
}

// ListSubtasks returns all subtasks for a task, oldest first.
func (s *Store) ListSubtasks(taskID string) ([]*Subtask, error) {
	rows, err := s.Query(`
		SELECT id, task_id, title, description, completed, created_at
		FROM subtasks
		WHERE task_id = ?
		ORDER BY created_at ASC, id ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSubtasks(rows)
}

// CountSubtasks returns the completed and total subtask counts for a task.
// Task progress is derived from these on every read and never persisted.
func (s *Store) CountSubtasks(taskID string) (completed, total int, err error) {
	err = s.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM subtasks WHERE task_id = ?
	`, taskID).Scan(&completed, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("count subtasks: %w", err)
	}
	return completed, total, nil
}

// UpdateSubtask writes the mutable subtask fields.
func (s *Store) UpdateSubtask(st *Subtask) error {
	result, err := s.Exec(`
		UPDATE subtasks
		SET title = ?, description = ?, completed = ?
		WHERE id = ?
	`, st.Title, st.Description, st.Completed, st.ID)
	if err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("subtask %s not found", st.ID)
	}
	return nil
}

// DeleteSubtask removes a subtask. The boolean reports whether a row was
// deleted.
func (s *Store) DeleteSubtask(id string) (bool, error) {
	result, err := s.Exec(`DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete subtask: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// scanSubtask scans a single row into a Subtask.
func scanSubtask(row *sql.Row) (*Subtask, error) {
	var st Subtask
	var description sql.NullString
	var createdAt string

	err := row.Scan(&st.ID, &st.TaskID, &st.Title, &description, &st.Completed, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan subtask: %w", err)
	}

	st.Description = description.String
	st.CreatedAt = parseTime(createdAt)

	return &st, nil
}

// scanSubtasks scans multiple rows into Subtasks.
func scanSubtasks(rows *sql.Rows) ([]*Subtask, error) {
	var subtasks []*Subtask

	for rows.Next() {
		var st Subtask
		var description sql.NullString
		var createdAt string

		err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &description, &st.Completed, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}

		st.Description = description.String
		st.CreatedAt = parseTime(createdAt)

		subtasks = append(subtasks, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subtasks: %w", err)
	}

	return subtasks, nil
}
