package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// Milestone represents a project milestone. Progress is an author-supplied
// percentage, not derived from any other record.
type Milestone struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Status      tracker.MilestoneStatus `json:"status"`
	Progress    int                     `json:"progress"`
	DueDate     *time.Time              `json:"due_date,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// CreateMilestone inserts a new milestone.
func (s *Store) CreateMilestone(m *Milestone) error {
	if m.ID == "" {
		m.ID = "MS-" + uuid.New().String()[:8]
	}
	if m.Status == "" {
		m.Status = tracker.MilestonePlanned
	}

	var due *string
	if m.DueDate != nil {
		d := formatTime(*m.DueDate)
		due = &d
	}

	_, err := s.Exec(`
		INSERT INTO milestones (id, title, description, status, progress, due_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ID, m.Title, m.Description, m.Status, m.Progress, due)
	if err != nil {
		return fmt.Errorf("create milestone: %w", err)
	}

	created, err := s.GetMilestone(m.ID)
	if err != nil {
		return err
	}
	*m = *created
	return nil
}

// GetMilestone retrieves a milestone by ID. Returns (nil, nil) when not found.
func (s *Store) GetMilestone(id string) (*Milestone, error) {
	row := s.QueryRow(`
		SELECT id, title, description, status, progress, due_date, created_at
		FROM milestones WHERE id = ?
	`, id)

	var m Milestone
	var description, dueDate sql.NullString
	var createdAt string

	err := row.Scan(&m.ID, &m.Title, &description, &m.Status, &m.Progress, &dueDate, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan milestone: %w", err)
	}

	m.Description = description.String
	m.DueDate = parseNullTime(dueDate)
	m.CreatedAt = parseTime(createdAt)

	return &m, nil
}

// ListMilestones returns all milestones ordered by due date ascending,
// milestones without a due date last.
func (s *Store) ListMilestones() ([]*Milestone, error) {
	rows, err := s.Query(`
		SELECT id, title, description, status, progress, due_date, created_at
		FROM milestones
		ORDER BY due_date IS NULL, due_date ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var milestones []*Milestone
	for rows.Next() {
		var m Milestone
		var description, dueDate sql.NullString
		var createdAt string

		if err := rows.Scan(&m.ID, &m.Title, &description, &m.Status, &m.Progress, &dueDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}

		m.Description = description.String
		m.DueDate = parseNullTime(dueDate)
		m.CreatedAt = parseTime(createdAt)

		milestones = append(milestones, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}

	return milestones, nil
}

// UpdateMilestone writes the mutable milestone fields.
func (s *Store) UpdateMilestone(m *Milestone) error {
	var due *string
	if m.DueDate != nil {
		d := formatTime(*m.DueDate)
		due = &d
	}

	result, err := s.Exec(`
		UPDATE milestones
		SET title = ?, description = ?, status = ?, progress = ?, due_date = ?
		WHERE id = ?
	`, m.Title, m.Description, m.Status, m.Progress, due, m.ID)
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("milestone %s not found", m.ID)
	}
	return nil
}

// DeleteMilestone removes a milestone. The boolean reports whether a row was
// deleted.
func (s *Store) DeleteMilestone(id string) (bool, error) {
	result, err := s.Exec(`DELETE FROM milestones WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete milestone: %w", err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}
