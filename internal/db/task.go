package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// Task represents a board task record.
type Task struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      tracker.TaskStatus `json:"status"`
	AssignedTo  string             `json:"assigned_to,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CreateTask inserts a new task and reloads it so the caller sees the
// server-assigned creation timestamp.
func (s *Store) CreateTask(t *Task) error {
	if t.ID == "" {
		t.ID = "TSK-" + uuid.New().String()[:8]
	}
	if t.Status == "" {
		t.Status = tracker.TaskTodo
	}

	var due *string
	if t.DueDate != nil {
		d := formatTime(*t.DueDate)
		due = &d
	}

	_, err := s.Exec(`
		INSERT INTO tasks (id, title, description, status, assigned_to, due_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Status, t.AssignedTo, due)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	created, err := s.GetTask(t.ID)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// GetTask retrieves a task by ID. Returns (nil, nil) when not found.
func (s *Store) GetTask(id string) (*Task, error) {
	row := s.QueryRow(`
		SELECT id, title, description, status, assigned_to, due_date, created_at
		FROM tasks WHERE id = ?
	`, id)

	return scanTask(row)
}

// ListTasks returns all tasks ordered by due date ascending, tasks without
// a due date last.
func (s *Store) ListTasks() ([]*Task, error) {
	rows, err := s.Query(`
		SELECT id, title, description, status, assigned_to, due_date, created_at
		FROM tasks
		ORDER BY due_date IS NULL, due_date ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// UpdateTask writes the mutable task fields. The write is a blind last-write-
// wins update by id; there is no version check.
func (s *Store) UpdateTask(t *Task) error {
	var due *string
	if t.DueDate != nil {
		d := formatTime(*t.DueDate)
		due = &d
	}

	result, err := s.Exec(`
		UPDATE tasks
		SET title = ?, description = ?, status = ?, assigned_to = ?, due_date = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Status, t.AssignedTo, due, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("task %s not found", t.ID)
	}
	return nil
}

// DeleteTask removes a task. The boolean reports whether a row was deleted.
func (s *Store) DeleteTask(id string) (bool, error) {
	result, err := s.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// TaskExists reports whether a task with the given ID exists.
func (s *Store) TaskExists(id string) (bool, error) {
	var n int
	if err := s.QueryRow(`SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check task exists: %w", err)
	}
	return n > 0, nil
}

// scanTask scans a single row into a Task.
func scanTask(row *sql.Row) (*Task, error) {
	var t Task
	var description, assignedTo, dueDate sql.NullString
	var createdAt string

	err := row.Scan(&t.ID, &t.Title, &description, &t.Status, &assignedTo, &dueDate, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	t.Description = description.String
	t.AssignedTo = assignedTo.String
	t.DueDate = parseNullTime(dueDate)
	t.CreatedAt = parseTime(createdAt)

	return &t, nil
}

// scanTasks scans multiple rows into Tasks.
func scanTasks(rows *sql.Rows) ([]*Task, error) {
	var tasks []*Task

	for rows.Next() {
		var t Task
		var description, assignedTo, dueDate sql.NullString
		var createdAt string

		err := rows.Scan(&t.ID, &t.Title, &description, &t.Status, &assignedTo, &dueDate, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}

		t.Description = description.String
		t.AssignedTo = assignedTo.String
		t.DueDate = parseNullTime(dueDate)
		t.CreatedAt = parseTime(createdAt)

		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}
