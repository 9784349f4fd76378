package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// Bug represents a reported defect. RelatedTaskID is a weak reference:
// deleting the task does not cascade to the bug.
type Bug struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Severity      tracker.Severity  `json:"severity"`
	Status        tracker.BugStatus `json:"status"`
	ReportedBy    string            `json:"reported_by,omitempty"`
	ReportedAt    time.Time         `json:"reported_at"`
	RelatedTaskID string            `json:"related_task_id,omitempty"`
}

// CreateBug inserts a new bug. An empty or whitespace-only related task ID
// is normalized to NULL before persistence.
func (s *Store) CreateBug(b *Bug) error {
	if b.ID == "" {
		b.ID = "BUG-" + uuid.New().String()[:8]
	}
	if b.Status == "" {
		b.Status = tracker.BugOpen
	}

	var related *string
	if trimmed := strings.TrimSpace(b.RelatedTaskID); trimmed != "" {
		related = &trimmed
	}

	_, err := s.Exec(`
		INSERT INTO bugs (id, title, description, severity, status, reported_by, related_task_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Title, b.Description, b.Severity, b.Status, b.ReportedBy, related)
	if err != nil {
		return fmt.Errorf("create bug: %w", err)
	}

	created, err := s.GetBug(b.ID)
	if err != nil {
		return err
	}
	*b = *created
	return nil
}

// GetBug retrieves a bug by ID. Returns (nil, nil) when not found.
func (s *Store) GetBug(id string) (*Bug, error) {
	row := s.QueryRow(`
		SELECT id, title, description, severity, status, reported_by, reported_at, related_task_id
		FROM bugs WHERE id = ?
	`, id)

	return scanBug(row)
}

// ListBugs returns all bugs, most recently reported first.
func (s *Store) ListBugs() ([]*Bug, error) {
	rows, err := s.Query(`
		SELECT id, title, description, severity, status, reported_by, reported_at, related_task_id
		FROM bugs
		ORDER BY reported_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanBugs(rows)
}

// ListBugsByTask returns bugs weakly referencing the given task, most
// recently reported first.
func (s *Store) ListBugsByTask(taskID string) ([]*Bug, error) {
	rows, err := s.Query(`
		SELECT id, title, description, severity, status, reported_by, reported_at, related_task_id
		FROM bugs
		WHERE related_task_id = ?
		ORDER BY reported_at DESC, id DESC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list bugs for task: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanBugs(rows)
}

// UpdateBugStatus changes a bug's status. Severity is immutable after
// creation, so status is the only mutable column.
func (s *Store) UpdateBugStatus(id string, status tracker.BugStatus) error {
	result, err := s.Exec(`UPDATE bugs SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update bug status: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("bug %s not found", id)
	}
	return nil
}

// scanBug scans a single row into a Bug.
func scanBug(row *sql.Row) (*Bug, error) {
	var b Bug
	var description, reportedBy, relatedTaskID sql.NullString
	var reportedAt string

	err := row.Scan(&b.ID, &b.Title, &description, &b.Severity, &b.Status, &reportedBy, &reportedAt, &relatedTaskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan bug: %w", err)
	}

	b.Description = description.String
	b.ReportedBy = reportedBy.String
	b.RelatedTaskID = relatedTaskID.String
	b.ReportedAt = parseTime(reportedAt)

	return &b, nil
}

// scanBugs scans multiple rows into Bugs.
func scanBugs(rows *sql.Rows) ([]*Bug, error) {
	var bugs []*Bug

	for rows.Next() {
		var b Bug
		var description, reportedBy, relatedTaskID sql.NullString
		var reportedAt string

		err := rows.Scan(&b.ID, &b.Title, &description, &b.Severity, &b.Status, &reportedBy, &reportedAt, &relatedTaskID)
		if err != nil {
			return nil, fmt.Errorf("scan bug: %w", err)
		}

		b.Description = description.String
		b.ReportedBy = reportedBy.String
		b.RelatedTaskID = relatedTaskID.String
		b.ReportedAt = parseTime(reportedAt)

		bugs = append(bugs, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bugs: %w", err)
	}

	return bugs, nil
}
