package api

import (
	"encoding/json"
	"net/http"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
	"github.com/FMSoblaci/oblat-project-flow/internal/db"
)

// sessionResponse is returned by sign-up, sign-in, and session restore.
type sessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt string         `json:"expires_at"`
	User      *auth.Identity `json:"user"`
}

func newSessionResponse(identity *auth.Identity, session *db.Session) sessionResponse {
	return sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"),
		User:      identity,
	}
}

// handleSignUp registers a new user.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name,omitempty"`
		Role     string `json:"role,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, session, err := s.auth.SignUp(req.Email, req.Password, req.FullName, auth.Role(req.Role))
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponseStatus(w, newSessionResponse(identity, session), http.StatusCreated)
}

// handleSignIn verifies credentials and opens a session.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity, session, err := s.auth.SignIn(req.Email, req.Password)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, newSessionResponse(identity, session))
}

// handleSignOut invalidates the current session token.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(bearerToken(r)); err != nil {
		s.handleError(w, err)
		return
	}
	s.jsonResponse(w, map[string]string{"status": "signed_out"})
}

// handleGetSession returns the identity for the presented token, letting a
// reloading client restore its signed-in state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, map[string]any{"user": identityFrom(r)})
}

// handleUpdateProfile updates the caller's profile. The response carries the
// merged identity; clients must only adopt it after a success status.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"full_name,omitempty"`
		Role     string `json:"role,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	identity := identityFrom(r)
	merged, err := s.auth.UpdateProfile(identity.UserID, req.FullName, auth.Role(req.Role))
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.jsonResponse(w, map[string]any{"user": merged})
}
