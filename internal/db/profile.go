package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Profile represents the application-level identity record, one-to-one with
// a user. Role drives route and action gating.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProfile inserts the profile row for a user.
func (s *Store) CreateProfile(p *Profile) error {
	_, err := s.Exec(`
		INSERT INTO profiles (id, full_name, role)
		VALUES (?, ?, ?)
	`, p.ID, p.FullName, p.Role)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	created, err := s.GetProfile(p.ID)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// GetProfile retrieves a profile by user ID. Returns (nil, nil) when not
// found.
func (s *Store) GetProfile(id string) (*Profile, error) {
	row := s.QueryRow(`
		SELECT id, full_name, role, created_at
		FROM profiles WHERE id = ?
	`, id)

	var p Profile
	var fullName sql.NullString
	var createdAt string

	err := row.Scan(&p.ID, &fullName, &p.Role, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	p.FullName = fullName.String
	p.CreatedAt = parseTime(createdAt)

	return &p, nil
}

// UpdateProfile writes the mutable profile fields.
func (s *Store) UpdateProfile(p *Profile) error {
	result, err := s.Exec(`
		UPDATE profiles SET full_name = ?, role = ? WHERE id = ?
	`, p.FullName, p.Role, p.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("profile %s not found", p.ID)
	}
	return nil
}
