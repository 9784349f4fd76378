package db

import "fmt"

// Project-level key-value statistics. These hold author-maintained values
// such as overall project progress and the planned end date. Task and bug
// counters are computed live from the record sets, never stored here.

// GetProjectStats returns the named key-value rows. Missing names are simply
// absent from the result.
func (s *Store) GetProjectStats(names ...string) (map[string]string, error) {
	stats := make(map[string]string, len(names))
	if len(names) == 0 {
		return stats, nil
	}

	query := `SELECT name, value FROM project_stats WHERE name IN (`
	args := make([]any, len(names))
	for i, n := range names {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = n
	}
	query += ")"

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get project stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan project stat: %w", err)
		}
		stats[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project stats: %w", err)
	}

	return stats, nil
}

// SetProjectStat upserts a key-value row.
func (s *Store) SetProjectStat(name, value string) error {
	_, err := s.Exec(`
		INSERT INTO project_stats (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		return fmt.Errorf("set project stat: %w", err)
	}
	return nil
}
