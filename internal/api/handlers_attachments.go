package api

import (
	"net/http"

	"github.com/FMSoblaci/oblat-project-flow/internal/blob"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
)

// handleUploadAttachment accepts a multipart file upload for a task and
// returns the public URL to reference from a comment.
func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	exists, err := s.store.TaskExists(taskID)
	if err != nil {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to upload attachment", http.StatusInternalServerError)
		return
	}
	if !exists {
		s.handleError(w, flowerrors.ErrTaskNotFound(taskID))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.handleError(w, flowerrors.ErrValidation("upload too large or malformed"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.handleError(w, flowerrors.ErrValidation("file field is required"))
		return
	}
	defer file.Close()

	key := blob.CommentImageKey(taskID, header.Filename)
	url, err := s.blobs.Save(key, file)
	if err != nil {
		s.logger.Error("attachment save failed", "task", taskID, "error", err)
		s.jsonError(w, "failed to store attachment", http.StatusInternalServerError)
		return
	}

	s.jsonResponseStatus(w, map[string]string{"url": url}, http.StatusCreated)
}
