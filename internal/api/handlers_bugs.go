package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// handleListBugs returns all bugs, newest first.
func (s *Server) handleListBugs(w http.ResponseWriter, r *http.Request) {
	bugs, err := s.store.ListBugs()
	if err != nil {
		s.logger.Error("list bugs failed", "error", err)
		s.jsonError(w, "failed to load bugs", http.StatusInternalServerError)
		return
	}
	if bugs == nil {
		bugs = []*db.Bug{}
	}
	s.jsonResponse(w, bugs)
}

// handleCreateBug files a new bug. Severity is chosen here and immutable
// after; a blank related task reference is stored as no reference.
func (s *Server) handleCreateBug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title         string `json:"title"`
		Description   string `json:"description,omitempty"`
		Severity      string `json:"severity"`
		RelatedTaskID string `json:"related_task_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		s.handleError(w, flowerrors.ErrValidation("title is required"))
		return
	}
	if !tracker.IsValidSeverity(tracker.Severity(req.Severity)) {
		s.handleError(w, flowerrors.ErrInvalidSeverity(req.Severity))
		return
	}

	identity := identityFrom(r)
	bug := &db.Bug{
		Title:         req.Title,
		Description:   req.Description,
		Severity:      tracker.Severity(req.Severity),
		ReportedBy:    actorName(identity),
		RelatedTaskID: req.RelatedTaskID,
	}
	if err := s.store.CreateBug(bug); err != nil {
		s.logger.Error("create bug failed", "error", err)
		s.jsonError(w, "failed to create bug", http.StatusInternalServerError)
		return
	}

	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       "reported bug",
		Description:  bug.Title,
		ActivityType: tracker.ActivityBug,
	})
	s.publisher.Publish(events.NewEvent(events.EventBugCreated, bug.ID, bug))
	s.statsCache.Invalidate()

	s.jsonResponseStatus(w, bug, http.StatusCreated)
}

// handleGetBug returns a single bug.
func (s *Server) handleGetBug(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	bug, err := s.store.GetBug(id)
	if err != nil {
		s.logger.Error("get bug failed", "bug", id, "error", err)
		s.jsonError(w, "failed to load bug", http.StatusInternalServerError)
		return
	}
	if bug == nil {
		s.handleError(w, flowerrors.ErrBugNotFound(id))
		return
	}
	s.jsonResponse(w, bug)
}

// handleUpdateBugStatus moves a bug through its lifecycle. Only status may
// change; a request for the current status is a no-op.
func (s *Server) handleUpdateBugStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	status := tracker.BugStatus(req.Status)
	if !tracker.IsValidBugStatus(status) {
		s.handleError(w, flowerrors.ErrInvalidStatus(req.Status, "open, in_progress, resolved"))
		return
	}

	bug, err := s.store.GetBug(id)
	if err != nil {
		s.logger.Error("get bug failed", "bug", id, "error", err)
		s.jsonError(w, "failed to load bug", http.StatusInternalServerError)
		return
	}
	if bug == nil {
		s.handleError(w, flowerrors.ErrBugNotFound(id))
		return
	}

	if !tracker.TransitionNeeded(bug.Status, status) {
		s.jsonResponse(w, bug)
		return
	}

	if err := s.store.UpdateBugStatus(id, status); err != nil {
		s.logger.Error("update bug failed", "bug", id, "error", err)
		s.jsonError(w, "failed to update bug", http.StatusInternalServerError)
		return
	}
	bug.Status = status

	identity := identityFrom(r)
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       fmt.Sprintf("moved bug to %s", status),
		Description:  bug.Title,
		ActivityType: tracker.ActivityBug,
	})
	s.publisher.Publish(events.NewEvent(events.EventBugUpdated, bug.ID, bug))
	s.statsCache.Invalidate()

	s.jsonResponse(w, bug)
}

// handleListTaskBugs returns bugs referencing a task.
func (s *Server) handleListTaskBugs(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	bugs, err := s.store.ListBugsByTask(taskID)
	if err != nil {
		s.logger.Error("list task bugs failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load bugs", http.StatusInternalServerError)
		return
	}
	if bugs == nil {
		bugs = []*db.Bug{}
	}
	s.jsonResponse(w, bugs)
}
