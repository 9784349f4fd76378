package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
)

// imageOnlyPlaceholder stands in for the text of a comment that carries
// only an attachment.
const imageOnlyPlaceholder = "(attachment)"

// handleListComments returns a task's discussion, oldest first.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	exists, err := s.store.TaskExists(taskID)
	if err != nil {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load comments", http.StatusInternalServerError)
		return
	}
	if !exists {
		s.handleError(w, flowerrors.ErrTaskNotFound(taskID))
		return
	}

	comments, err := s.store.ListComments(taskID)
	if err != nil {
		s.logger.Error("list comments failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to load comments", http.StatusInternalServerError)
		return
	}
	if comments == nil {
		comments = []*db.Comment{}
	}
	s.jsonResponse(w, comments)
}

// handleCreateComment appends a comment. A comment may carry text, an image
// URL, or both; image-only comments get a placeholder text. Comments are
// append-only: there is no update or delete route.
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	var req struct {
		Content  string `json:"content,omitempty"`
		ImageURL string `json:"image_url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" && req.ImageURL == "" {
		s.handleError(w, flowerrors.ErrValidation("comment needs text or an image"))
		return
	}
	if content == "" {
		content = imageOnlyPlaceholder
	}

	exists, err := s.store.TaskExists(taskID)
	if err != nil {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to create comment", http.StatusInternalServerError)
		return
	}
	if !exists {
		s.handleError(w, flowerrors.ErrTaskNotFound(taskID))
		return
	}

	identity := identityFrom(r)
	comment := &db.Comment{
		TaskID:   taskID,
		Content:  content,
		UserName: actorName(identity),
		ImageURL: req.ImageURL,
	}
	if err := s.store.CreateComment(comment); err != nil {
		s.logger.Error("create comment failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to create comment", http.StatusInternalServerError)
		return
	}

	s.publisher.Publish(events.NewEvent(events.EventCommentCreated, taskID, comment))
	s.jsonResponseStatus(w, comment, http.StatusCreated)
}
