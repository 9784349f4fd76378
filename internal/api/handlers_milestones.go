package api

import (
	"encoding/json"
	"net/http"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// handleListMilestones returns all milestones ordered by due date.
func (s *Server) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := s.store.ListMilestones()
	if err != nil {
		s.logger.Error("list milestones failed", "error", err)
		s.jsonError(w, "failed to load milestones", http.StatusInternalServerError)
		return
	}
	if milestones == nil {
		milestones = []*db.Milestone{}
	}
	s.jsonResponse(w, milestones)
}

// handleCreateMilestone creates a new milestone.
func (s *Server) handleCreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description,omitempty"`
		Status      string  `json:"status,omitempty"`
		Progress    int     `json:"progress,omitempty"`
		DueDate     *string `json:"due_date,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" {
		s.handleError(w, flowerrors.ErrValidation("title is required"))
		return
	}
	if req.Status != "" && !tracker.IsValidMilestoneStatus(tracker.MilestoneStatus(req.Status)) {
		s.handleError(w, flowerrors.ErrInvalidStatus(req.Status, "planned, in_progress, completed"))
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		s.handleError(w, flowerrors.ErrValidation("progress must be between 0 and 100"))
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		s.handleError(w, err)
		return
	}

	ms := &db.Milestone{
		Title:       req.Title,
		Description: req.Description,
		Status:      tracker.MilestoneStatus(req.Status),
		Progress:    req.Progress,
		DueDate:     due,
	}
	if err := s.store.CreateMilestone(ms); err != nil {
		s.logger.Error("create milestone failed", "error", err)
		s.jsonError(w, "failed to create milestone", http.StatusInternalServerError)
		return
	}

	identity := identityFrom(r)
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       "created milestone",
		Description:  ms.Title,
		ActivityType: tracker.ActivityMilestone,
	})
	s.publisher.Publish(events.NewEvent(events.EventMilestoneCreated, ms.ID, ms))

	s.jsonResponseStatus(w, ms, http.StatusCreated)
}

// handleGetMilestone returns a single milestone.
func (s *Server) handleGetMilestone(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ms, err := s.store.GetMilestone(id)
	if err != nil {
		s.logger.Error("get milestone failed", "milestone", id, "error", err)
		s.jsonError(w, "failed to load milestone", http.StatusInternalServerError)
		return
	}
	if ms == nil {
		s.handleError(w, flowerrors.ErrMilestoneNotFound(id))
		return
	}
	s.jsonResponse(w, ms)
}

// handleUpdateMilestone applies a partial update.
func (s *Server) handleUpdateMilestone(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Status      *string `json:"status,omitempty"`
		Progress    *int    `json:"progress,omitempty"`
		DueDate     *string `json:"due_date,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ms, err := s.store.GetMilestone(id)
	if err != nil {
		s.logger.Error("get milestone failed", "milestone", id, "error", err)
		s.jsonError(w, "failed to load milestone", http.StatusInternalServerError)
		return
	}
	if ms == nil {
		s.handleError(w, flowerrors.ErrMilestoneNotFound(id))
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			s.handleError(w, flowerrors.ErrValidation("title is required"))
			return
		}
		ms.Title = *req.Title
	}
	if req.Description != nil {
		ms.Description = *req.Description
	}
	if req.Status != nil {
		status := tracker.MilestoneStatus(*req.Status)
		if !tracker.IsValidMilestoneStatus(status) {
			s.handleError(w, flowerrors.ErrInvalidStatus(*req.Status, "planned, in_progress, completed"))
			return
		}
		ms.Status = status
	}
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			s.handleError(w, flowerrors.ErrValidation("progress must be between 0 and 100"))
			return
		}
		ms.Progress = *req.Progress
	}
	if req.DueDate != nil {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			s.handleError(w, err)
			return
		}
		ms.DueDate = due
	}

	if err := s.store.UpdateMilestone(ms); err != nil {
		s.logger.Error("update milestone failed", "milestone", id, "error", err)
		s.jsonError(w, "failed to update milestone", http.StatusInternalServerError)
		return
	}

	identity := identityFrom(r)
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       "updated milestone",
		Description:  ms.Title,
		ActivityType: tracker.ActivityMilestone,
	})
	s.publisher.Publish(events.NewEvent(events.EventMilestoneUpdated, ms.ID, ms))

	s.jsonResponse(w, ms)
}

// handleDeleteMilestone removes a milestone.
func (s *Server) handleDeleteMilestone(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ms, err := s.store.GetMilestone(id)
	if err != nil {
		s.logger.Error("get milestone failed", "milestone", id, "error", err)
		s.jsonError(w, "failed to load milestone", http.StatusInternalServerError)
		return
	}
	if ms == nil {
		s.handleError(w, flowerrors.ErrMilestoneNotFound(id))
		return
	}

	deleted, err := s.store.DeleteMilestone(id)
	if err != nil {
		s.logger.Error("delete milestone failed", "milestone", id, "error", err)
		s.jsonError(w, "failed to delete milestone", http.StatusInternalServerError)
		return
	}
	if !deleted {
		s.handleError(w, flowerrors.ErrMilestoneNotFound(id))
		return
	}

	identity := identityFrom(r)
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       "deleted milestone",
		Description:  ms.Title,
		ActivityType: tracker.ActivityMilestone,
	})
	s.publisher.Publish(events.NewEvent(events.EventMilestoneDeleted, id, nil))

	s.jsonResponse(w, map[string]string{"status": "deleted", "id": id})
}
