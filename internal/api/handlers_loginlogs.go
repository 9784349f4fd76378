package api

import (
	"net/http"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
)

// handleListLoginLogs returns the sign-in audit trail, newest first. Route
// registration restricts this to roles with the login-logs.view capability.
func (s *Server) handleListLoginLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.store.ListLoginLogs()
	if err != nil {
		s.logger.Error("list login logs failed", "error", err)
		s.jsonError(w, "failed to load login logs", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []*db.LoginLog{}
	}
	s.jsonResponse(w, logs)
}
