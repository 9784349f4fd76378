package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// taskView is a task decorated with derived board fields.
type taskView struct {
	*db.Task
	Urgency       tracker.Urgency `json:"urgency"`
	DaysRemaining *int            `json:"days_remaining,omitempty"`
	Progress      int             `json:"progress"`
}

func (s *Server) taskViewFor(t *db.Task) (*taskView, error) {
	completed, total, err := s.store.CountSubtasks(t.ID)
	if err != nil {
		return nil, err
	}

	view := &taskView{
		Task:     t,
		Urgency:  tracker.UrgencyNone,
		Progress: tracker.Progress(completed, total),
	}
	if t.DueDate != nil {
		now := time.Now()
		view.Urgency = tracker.Classify(*t.DueDate, now)
		days := tracker.DaysRemaining(*t.DueDate, now)
		view.DaysRemaining = &days
	}
	return view, nil
}

// handleListTasks returns all tasks sorted by due date, decorated with
// urgency and subtask-derived progress.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks()
	if err != nil {
		s.logger.Error("list tasks failed", "error", err)
		s.jsonError(w, "failed to load tasks", http.StatusInternalServerError)
		return
	}

	views := make([]*taskView, 0, len(tasks))
	for _, t := range tasks {
		view, err := s.taskViewFor(t)
		if err != nil {
			s.logger.Error("task view failed", "task", t.ID, "error", err)
			s.jsonError(w, "failed to load tasks", http.StatusInternalServerError)
			return
		}
		views = append(views, view)
	}

	s.jsonResponse(w, views)
}

// handleCreateTask creates a new task. Route registration restricts this to
// roles with the task.create capability.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description,omitempty"`
		Status      string  `json:"status,omitempty"`
		AssignedTo  string  `json:"assigned_to,omitempty"`
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
	if req.Status != "" && !tracker.IsValidTaskStatus(tracker.TaskStatus(req.Status)) {
		s.handleError(w, flowerrors.ErrInvalidStatus(req.Status, "todo, in_progress, done"))
		return
	}

	due, err := parseDueDate(req.DueDate)
	if err != nil {
		s.handleError(w, err)
		return
	}

	t := &db.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      tracker.TaskStatus(req.Status),
		AssignedTo:  req.AssignedTo,
		DueDate:     due,
	}
	if err := s.store.CreateTask(t); err != nil {
		s.logger.Error("create task failed", "error", err)
		s.jsonError(w, "failed to create task", http.StatusInternalServerError)
		return
	}

	identity := identityFrom(r)
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       "created task",
		Description:  t.Title,
		ActivityType: tracker.ActivityTask,
	})
	s.publisher.Publish(events.NewEvent(events.EventTaskCreated, t.ID, t))
	s.statsCache.Invalidate()

	view, err := s.taskViewFor(t)
	if err != nil {
		s.logger.Error("task view failed", "task", t.ID, "error", err)
		s.jsonError(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	s.jsonResponseStatus(w, view, http.StatusCreated)
}

// handleGetTask returns a single task.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := s.store.GetTask(id)
	if err != nil {
		s.logger.Error("get task failed", "task", id, "error", err)
		s.jsonError(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	if t == nil {
		s.handleError(w, flowerrors.ErrTaskNotFound(id))
		return
	}

	view, err := s.taskViewFor(t)
	if err != nil {
		s.logger.Error("task view failed", "task", id, "error", err)
		s.jsonError(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, view)
}

// handleUpdateTask applies a partial update. Updates race under last write
// wins; a status request matching the current status is a no-op that records
// no activity.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Status      *string `json:"status,omitempty"`
		AssignedTo  *string `json:"assigned_to,omitempty"`
		DueDate     *string `json:"due_date,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := s.store.GetTask(id)
	if err != nil {
		s.logger.Error("get task failed", "task", id, "error", err)
		s.jsonError(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	if t == nil {
		s.handleError(w, flowerrors.ErrTaskNotFound(id))
		return
	}

	changed := false
	statusChanged := false

	if req.Title != nil && *req.Title != t.Title {
		if *req.Title == "" {
			s.handleError(w, flowerrors.ErrValidation("title is required"))
			return
		}
		t.Title = *req.Title
		changed = true
	}
	if req.Description != nil && *req.Description != t.Description {
		t.Description = *req.Description
		changed = true
	}
	if req.AssignedTo != nil && *req.AssignedTo != t.AssignedTo {
		t.AssignedTo = *req.AssignedTo
		changed = true
	}
	if req.DueDate != nil {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			s.handleError(w, err)
			return
		}
		t.DueDate = due
		changed = true
	}
	if req.Status != nil {
		status := tracker.TaskStatus(*req.Status)
		if !tracker.IsValidTaskStatus(status) {
			s.handleError(w, flowerrors.ErrInvalidStatus(*req.Status, "todo, in_progress, done"))
			return
		}
		if tracker.TransitionNeeded(t.Status, status) {
			t.Status = status
			changed = true
			statusChanged = true
		}
	}

	if !changed {
		view, err := s.taskViewFor(t)
		if err != nil {
			s.logger.Error("task view failed", "task", id, "error", err)
			s.jsonError(w, "failed to load task", http.StatusInternalServerError)
			return
		}
		s.jsonResponse(w, view)
		return
	}

	if err := s.store.UpdateTask(t); err != nil {
		s.logger.Error("update task failed", "task", id, "error", err)
		s.jsonError(w, "failed to update task", http.StatusInternalServerError)
		return
	}

	identity := identityFrom(r)
	action := "updated task"
	if statusChanged {
		action = fmt.Sprintf("moved task to %s", t.Status)
	}
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       action,
		Description:  t.Title,
		ActivityType: tracker.ActivityTask,
	})
	s.publisher.Publish(events.NewEvent(events.EventTaskUpdated, t.ID, t))
	s.statsCache.Invalidate()

	view, err := s.taskViewFor(t)
	if err != nil {
		s.logger.Error("task view failed", "task", id, "error", err)
		s.jsonError(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	s.jsonResponse(w, view)
}

// handleDeleteTask removes a task and its subtasks. Bugs that referenced the
// task keep their weak link.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	t, err := s.store.GetTask(id)
	if err != nil {
		s.logger.Error("get task failed", "task", id, "error", err)
		s.jsonError(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	if t == nil {
		s.handleError(w, flowerrors.ErrTaskNotFound(id))
		return
	}

	deleted, err := s.store.DeleteTask(id)
	if err != nil {
		s.logger.Error("delete task failed", "task", id, "error", err)
		s.jsonError(w, "failed to delete task", http.StatusInternalServerError)
		return
	}
	if !deleted {
		s.handleError(w, flowerrors.ErrTaskNotFound(id))
		return
	}

	identity := identityFrom(r)
	s.recordActivity(&db.Activity{
		UserName:     actorName(identity),
		Action:       "deleted task",
		Description:  t.Title,
		ActivityType: tracker.ActivityTask,
	})
	s.publisher.Publish(events.NewEvent(events.EventTaskDeleted, id, nil))
	s.statsCache.Invalidate()

	s.jsonResponse(w, map[string]string{"status": "deleted", "id": id})
}

// parseDueDate accepts YYYY-MM-DD or RFC 3339. A nil or empty value clears
// the due date.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if due, err := time.Parse(layout, *raw); err == nil {
			return &due, nil
		}
	}
	return nil, flowerrors.ErrValidation(fmt.Sprintf("invalid due date: %s", *raw))
}
