package api

import (
	"net/http"
	"strconv"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
)

// handleListActivities returns the most recent activity entries, newest
// first. The limit defaults to 10 and is capped at 100.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	activities, err := s.store.ListRecentActivities(limit)
	if err != nil {
		s.logger.Error("list activities failed", "error", err)
		s.jsonError(w, "failed to load activities", http.StatusInternalServerError)
		return
	}
	if activities == nil {
		activities = []*db.Activity{}
	}
	s.jsonResponse(w, activities)
}
