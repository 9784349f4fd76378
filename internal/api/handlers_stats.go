package api

import (
	"encoding/json"
	"net/http"

	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
)

// projectStatNames lists the manually maintained key-value stats. Task and
// bug counts are never stored here; they are reduced live by the dashboard
// endpoint.
var projectStatNames = []string{"project_progress", "planned_end_date"}

// handleGetDashboardStats returns task and bug counts reduced from the
// source tables, served through a short-TTL cache.
func (s *Server) handleGetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsCache.Stats()
	if err != nil {
		s.logger.Error("dashboard stats failed", "error", err)
		s.jsonError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

// handleGetTaskStats returns task counts by status.
func (s *Server) handleGetTaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsCache.Stats()
	if err != nil {
		s.logger.Error("task stats failed", "error", err)
		s.jsonError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, map[string]int{
		"total":       stats.TotalTasks,
		"todo":        stats.TasksTodo,
		"in_progress": stats.TasksInProgress,
		"done":        stats.TasksDone,
	})
}

// handleGetBugStats returns bug counts by severity.
func (s *Server) handleGetBugStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsCache.Stats()
	if err != nil {
		s.logger.Error("bug stats failed", "error", err)
		s.jsonError(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, map[string]int{
		"total":    stats.TotalBugs,
		"critical": stats.CriticalBugs,
		"medium":   stats.MediumBugs,
		"low":      stats.LowBugs,
	})
}

// handleGetProjectStats returns the manually maintained project stats.
func (s *Server) handleGetProjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetProjectStats(projectStatNames...)
	if err != nil {
		s.logger.Error("project stats failed", "error", err)
		s.jsonError(w, "failed to load project stats", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}

// handleSetProjectStats upserts manually maintained project stats. Route
// registration restricts this to roles with the stats.edit capability.
func (s *Server) handleSetProjectStats(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	allowed := make(map[string]bool, len(projectStatNames))
	for _, name := range projectStatNames {
		allowed[name] = true
	}

	// Reject the whole request before the first write so a mixed payload
	// never partially persists.
	for name := range req {
		if !allowed[name] {
			s.handleError(w, flowerrors.ErrValidation("unknown stat: "+name))
			return
		}
	}

	for name, value := range req {
		if err := s.store.SetProjectStat(name, value); err != nil {
			s.logger.Error("set project stat failed", "name", name, "error", err)
			s.jsonError(w, "failed to save project stats", http.StatusInternalServerError)
			return
		}
	}

	s.publisher.Publish(events.NewEvent(events.EventStatsUpdated, events.GlobalEntityID, req))

	stats, err := s.store.GetProjectStats(projectStatNames...)
	if err != nil {
		s.logger.Error("project stats failed", "error", err)
		s.jsonError(w, "failed to load project stats", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, stats)
}
