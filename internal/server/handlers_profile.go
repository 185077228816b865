package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
	"github.com/shahramhal/ai-career-coach/internal/storage"
	"github.com/shahramhal/ai-career-coach/internal/types"
)

const maxAvatarBytes = 5 << 20 // 5 MB

// avatarTypes are the content types accepted for avatar uploads, checked
// against the sniffed type rather than the client-supplied header.
var avatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// handleGetProfile returns the authenticated user's career profile. A user
// who has never saved a profile gets an empty one rather than a 404.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if profile == nil {
		profile = &db.Profile{UserID: userID, Skills: []string{}, Links: []string{}}
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpdateProfile upserts the editable fields of the career profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profile, err := s.db.UpsertProfile(r.Context(), userID, &db.ProfileInput{
		Headline:        req.Headline,
		Bio:             req.Bio,
		Location:        req.Location,
		Skills:          req.Skills,
		ExperienceYears: req.ExperienceYears,
		DesiredRole:     req.DesiredRole,
		DesiredSalary:   req.DesiredSalary,
		Links:           req.Links,
	})
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.recordEvent(r.Context(), userID, "profile_updated", nil)
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUploadAvatar stores a profile picture. The content type is sniffed
// from the first bytes of the file, not taken from the multipart header.
func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		s.serviceError(w, &ErrFileTooLarge{LimitBytes: maxAvatarBytes})
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing avatar file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	contentType := http.DetectContentType(data)
	if !avatarTypes[contentType] {
		s.serviceError(w, &ErrUnsupportedMedia{ContentType: contentType})
		return
	}

	key := storage.AvatarKey(userID, contentType)
	if err := s.store.Save(r.Context(), key, bytes.NewReader(data)); err != nil {
		s.serviceError(w, err)
		return
	}
	if err := s.db.UpdateAvatar(r.Context(), userID, key, contentType); err != nil {
		s.serviceError(w, err)
		return
	}

	s.logger.Info("avatar uploaded",
		zap.String("user_id", userID.String()),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"content_type": contentType,
		"size_bytes":   len(data),
	})
}

// handleGetAvatar streams the stored avatar back to the client.
func (s *Server) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if profile == nil || profile.AvatarKey == "" {
		s.serviceError(w, &ErrNotFound{Resource: "avatar", ID: userID.String()})
		return
	}

	reader, err := s.store.Open(r.Context(), profile.AvatarKey)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", profile.AvatarType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Warn("avatar stream interrupted", zap.Error(err))
	}
}
