// Package auth implements identity management: password sign-up and
// sign-in, bearer-token sessions, profiles, and the role permission table.
package auth

import (
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
)

// DefaultSessionTTL is used when no TTL is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Identity is a signed-in user joined with their profile.
type Identity struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role"`
}

// Service provides authentication and profile operations on top of the store.
type Service struct {
	store      *db.Store
	logger     *slog.Logger
	sessionTTL time.Duration
}

// NewService creates an auth service. A zero ttl falls back to
// DefaultSessionTTL.
func NewService(store *db.Store, logger *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, sessionTTL: ttl}
}

// SignUp registers a new user with a hashed password and a profile row.
// An empty role falls back to DefaultRole. Returns the identity and a
// fresh session.
func (s *Service) SignUp(email, password, fullName string, role Role) (*Identity, *db.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, nil, flowerrors.ErrValidation("email is required")
	}
	if len(password) < 6 {
		return nil, nil, flowerrors.ErrValidation("password must be at least 6 characters")
	}
	if role == "" {
		role = DefaultRole
	}
	if !IsValidRole(role) {
		return nil, nil, flowerrors.ErrInvalidRole(string(role))
	}

	existing, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}
	if existing != nil {
		return nil, nil, flowerrors.ErrEmailTaken(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}

	user := &db.User{Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateUser(user); err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}
	profile := &db.Profile{ID: user.ID, FullName: fullName, Role: string(role)}
	if err := s.store.CreateProfile(profile); err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}

	session, err := s.store.CreateSession(user.ID, s.sessionTTL)
	if err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}

	s.logger.Info("user signed up", "email", email, "role", role)
	return &Identity{UserID: user.ID, Email: email, FullName: fullName, Role: role}, session, nil
}

// SignIn verifies credentials and opens a session. The login audit entry is
// written on a detached goroutine; an audit failure is logged and never
// blocks or fails the sign-in.
func (s *Service) SignIn(email, password string) (*Identity, *db.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}
	if user == nil {
		return nil, nil, flowerrors.ErrInvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, flowerrors.ErrInvalidCredentials()
	}

	identity, err := s.identityFor(user)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.store.CreateSession(user.ID, s.sessionTTL)
	if err != nil {
		return nil, nil, flowerrors.ErrStorage(err)
	}

	go func(userID, email, role string) {
		if err := s.store.RecordLogin(&db.LoginLog{UserID: userID, Email: email, Role: role}); err != nil {
			s.logger.Warn("login audit write failed", "email", email, "error", err)
		}
	}(user.ID, user.Email, string(identity.Role))

	s.logger.Info("user signed in", "email", email)
	return identity, session, nil
}

// SignOut invalidates the session token. Unknown tokens are a no-op.
func (s *Service) SignOut(token string) error {
	if err := s.store.DeleteSession(token); err != nil {
		return flowerrors.ErrStorage(err)
	}
	return nil
}

// Restore resolves a bearer token back to an identity. Expired or unknown
// tokens are rejected as unauthenticated.
func (s *Service) Restore(token string) (*Identity, error) {
	if token == "" {
		return nil, flowerrors.ErrUnauthenticated()
	}
	session, err := s.store.GetSession(token)
	if err != nil {
		return nil, flowerrors.ErrStorage(err)
	}
	if session == nil {
		return nil, flowerrors.ErrUnauthenticated()
	}
	user, err := s.store.GetUser(session.UserID)
	if err != nil {
		return nil, flowerrors.ErrStorage(err)
	}
	if user == nil {
		return nil, flowerrors.ErrUnauthenticated()
	}
	return s.identityFor(user)
}

// UpdateProfile persists profile changes and returns the merged identity.
// The caller must only adopt the returned state after a nil error; a failed
// update leaves the stored profile untouched.
func (s *Service) UpdateProfile(userID, fullName string, role Role) (*Identity, error) {
	if role != "" && !IsValidRole(role) {
		return nil, flowerrors.ErrInvalidRole(string(role))
	}

	profile, err := s.store.GetProfile(userID)
	if err != nil {
		return nil, flowerrors.ErrStorage(err)
	}
	if profile == nil {
		return nil, flowerrors.ErrUnauthenticated()
	}

	if fullName != "" {
		profile.FullName = fullName
	}
	if role != "" {
		profile.Role = string(role)
	}
	if err := s.store.UpdateProfile(profile); err != nil {
		return nil, flowerrors.ErrStorage(err)
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, flowerrors.ErrStorage(err)
	}
	if user == nil {
		return nil, flowerrors.ErrUnauthenticated()
	}
	return &Identity{UserID: userID, Email: user.Email, FullName: profile.FullName, Role: Role(profile.Role)}, nil
}

func (s *Service) identityFor(user *db.User) (*Identity, error) {
	profile, err := s.store.GetProfile(user.ID)
	if err != nil {
		return nil, flowerrors.ErrStorage(err)
	}
	identity := &Identity{UserID: user.ID, Email: user.Email, Role: DefaultRole}
	if profile != nil {
		identity.FullName = profile.FullName
		identity.Role = Role(profile.Role)
	}
	return identity, nil
}
