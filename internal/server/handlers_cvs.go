package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/ingestion"
	"github.com/shahramhal/ai-career-coach/internal/queue"
	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
	"github.com/shahramhal/ai-career-coach/internal/storage"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

const maxCVBytes = 10 << 20 // 10 MB

// handleUploadCV accepts a CV document and starts the parsing pipeline.
// With a queue configured the parse happens asynchronously and the CV is
// returned in pending state; otherwise it is parsed before responding.
func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCVBytes)
	if err := r.ParseMultipartForm(maxCVBytes); err != nil {
		s.serviceError(w, &ErrFileTooLarge{LimitBytes: maxCVBytes})
		return
	}

	file, header, err := r.FormFile("cv")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing cv file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if !ingestion.SupportedCVType(contentType) {
		s.serviceError(w, &ErrUnsupportedMedia{ContentType: contentType})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	cvID := uuid.New()
	key := storage.CVKey(userID, cvID, header.Filename)
	if err := s.store.Save(r.Context(), key, bytes.NewReader(data)); err != nil {
		s.serviceError(w, err)
		return
	}

	cv, err := s.db.CreateCV(r.Context(), userID, header.Filename, key, contentType, int64(len(data)))
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.logger.Info("cv uploaded",
		zap.String("cv_id", cv.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))
	s.recordEvent(r.Context(), userID, "cv_uploaded", map[string]string{"cv_id": cv.ID.String()})

	if s.queue != nil {
		if err := s.queue.Publish(queue.ParseJob{CVID: cv.ID, UserID: userID}); err != nil {
			s.logger.Error("failed to enqueue cv parse", zap.Error(err))
			s.serviceError(w, err)
			return
		}
		s.jsonResponse(w, http.StatusAccepted, cv)
		return
	}

	// Synchronous fallback: parse in the request path and return the final state.
	if err := s.pipeline.Process(r.Context(), cv.ID); err != nil {
		s.logger.Warn("synchronous cv parse failed", zap.String("cv_id", cv.ID.String()), zap.Error(err))
	}
	parsed, err := s.db.GetCV(r.Context(), cv.ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if parsed == nil {
		s.serviceError(w, &ErrNotFound{Resource: "cv", ID: cv.ID.String()})
		return
	}
	s.jsonResponse(w, http.StatusCreated, parsed)
}

// handleListCVs returns the authenticated user's CVs, most recent first.
func (s *Server) handleListCVs(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cvs, err := s.db.ListCVsByUser(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"cvs": cvs, "count": len(cvs)})
}

// handleGetCV returns one CV with its parsed document when available.
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	cv, ok := s.ownedCV(w, r)
	if !ok {
		return
	}

	response := map[string]any{"cv": cv}
	if cv.Status == db.CVStatusParsed && len(cv.Parsed) > 0 {
		var parsed types.ParsedCV
		if err := json.Unmarshal(cv.Parsed, &parsed); err != nil {
			s.serviceError(w, err)
			return
		}
		response["parsed"] = &parsed
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleDeleteCV removes a CV row and its stored file.
func (s *Server) handleDeleteCV(w http.ResponseWriter, r *http.Request) {
	cv, ok := s.ownedCV(w, r)
	if !ok {
		return
	}

	if err := s.db.DeleteCV(r.Context(), cv.ID); err != nil {
		s.serviceError(w, err)
		return
	}
	if err := s.store.Delete(r.Context(), cv.StorageKey); err != nil {
		// The row is gone; an orphaned object is log-worthy but not fatal.
		s.logger.Warn("failed to delete cv object", zap.String("key", cv.StorageKey), zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetATSReport returns the ATS heuristic report for a parsed CV.
func (s *Server) handleGetATSReport(w http.ResponseWriter, r *http.Request) {
	cv, ok := s.ownedCV(w, r)
	if !ok {
		return
	}
	if cv.Status != db.CVStatusParsed {
		s.serviceError(w, &ErrCVNotParsed{Status: cv.Status})
		return
	}

	var report types.ATSReport
	if err := json.Unmarshal(cv.ATSReport, &report); err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, &report)
}

// ownedCV loads the CV from the path ID and enforces ownership. It writes
// the error response itself when it returns ok=false.
func (s *Server) ownedCV(w http.ResponseWriter, r *http.Request) (*db.CV, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid cv id")
		return nil, false
	}

	cv, err := s.db.GetCV(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return nil, false
	}
	if cv == nil {
		s.serviceError(w, &ErrNotFound{Resource: "cv", ID: id.String()})
		return nil, false
	}
	if cv.UserID != userID {
		s.serviceError(w, &ErrForbidden{})
		return nil, false
	}
	return cv, true
}
