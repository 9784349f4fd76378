package api

import (
	"encoding/json"
	"net/http"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// handleListSubtasks returns a task's subtasks, oldest first.
func (s *Server) handleListSubtasks(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	exists, err := s.store.TaskExists(taskID)
	if err != nil {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load subtasks", http.StatusInternalServerError)
		return
	}
	if !exists {
		s.handleError(w, flowerrors.ErrTaskNotFound(taskID))
		return
	}

	subtasks, err := s.store.ListSubtasks(taskID)
	if err != nil {
		s.logger.Error("list subtasks failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load subtasks", http.StatusInternalServerError)
		return
	}
	if subtasks == nil {
		subtasks = []*db.Subtask{}
	}
	s.jsonResponse(w, subtasks)
}

// handleCreateSubtask adds a subtask under a task.
func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Completed   bool   `json:"completed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		s.handleError(w, flowerrors.ErrValidation("title is required"))
		return
	}

	exists, err := s.store.TaskExists(taskID)
	if err != nil {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to create subtask", http.StatusInternalServerError)
		return
	}
	if !exists {
		s.handleError(w, flowerrors.ErrTaskNotFound(taskID))
		return
	}

	st := &db.Subtask{
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if err := s.store.CreateSubtask(st); err != nil {
		s.logger.Error("create subtask failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to create subtask", http.StatusInternalServerError)
		return
	}

	s.publisher.Publish(events.NewEvent(events.EventSubtaskCreated, taskID, st))
	s.jsonResponseStatus(w, st, http.StatusCreated)
}

// handleGetTaskProgress returns the subtask-derived completion percentage.
func (s *Server) handleGetTaskProgress(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	exists, err := s.store.TaskExists(taskID)
	if err != nil {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load progress", http.StatusInternalServerError)
		return
	}
	if !exists {
		s.handleError(w, flowerrors.ErrTaskNotFound(taskID))
		return
	}

	completed, total, err := s.store.CountSubtasks(taskID)
	if err != nil {
		s.logger.Error("count subtasks failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load progress", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, map[string]any{
		"task_id":   taskID,
		"completed": completed,
		"total":     total,
		"progress":  tracker.Progress(completed, total),
	})
}

// handleUpdateSubtask applies a partial update, typically the completed
// toggle.
func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Completed   *bool   `json:"completed,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	st, err := s.store.GetSubtask(id)
	if err != nil {
		s.logger.Error("get subtask failed", "subtask", id, "error", err)
		s.jsonError(w, "failed to load subtask", http.StatusInternalServerError)
		return
	}
	if st == nil {
		s.handleError(w, flowerrors.ErrSubtaskNotFound(id))
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			s.handleError(w, flowerrors.ErrValidation("title is required"))
			return
		}
		st.Title = *req.Title
	}
	if req.Description != nil {
		st.Description = *req.Description
	}
	if req.Completed != nil {
		st.Completed = *req.Completed
	}

	if err := s.store.UpdateSubtask(st); err != nil {
		s.logger.Error("update subtask failed", "subtask", id, "error", err)
		s.jsonError(w, "failed to update subtask", http.StatusInternalServerError)
		return
	}

	s.publisher.Publish(events.NewEvent(events.EventSubtaskUpdated, st.TaskID, st))
	s.jsonResponse(w, st)
}

// handleDeleteSubtask removes a subtask.
func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	st, err := s.store.GetSubtask(id)
	if err != nil {
		s.logger.Error("get subtask failed", "subtask", id, "error", err)
		s.jsonError(w, "failed to load subtask", http.StatusInternalServerError)
		return
	}
	if st == nil {
		s.handleError(w, flowerrors.ErrSubtaskNotFound(id))
		return
	}

	deleted, err := s.store.DeleteSubtask(id)
	if err != nil {
		s.logger.Error("delete subtask failed", "subtask", id, "error", err)
		s.jsonError(w, "failed to delete subtask", http.StatusInternalServerError)
		return
	}
	if !deleted {
		s.handleError(w, flowerrors.ErrSubtaskNotFound(id))
		return
	}

	s.publisher.Publish(events.NewEvent(events.EventSubtaskDeleted, st.TaskID, nil))
	s.jsonResponse(w, map[string]string{"status": "deleted", "id": id})
}
