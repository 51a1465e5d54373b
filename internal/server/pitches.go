package server

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"venturelink/internal/utils"
	"venturelink/pkg/types"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handlePostPitch(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("ctx doesn't contain user")
		s.internalServerError(w)
		return
	}

	var in = new(types.PitchForm)
	err = decodeBody(r, in)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid pitch payload")
		return
	}

	pitch := &types.Pitch{
		UserID:             user.ID,
		Title:              strings.TrimSpace(in.Title),
		Summary:            strings.TrimSpace(in.Summary),
		FullText:           strings.TrimSpace(in.FullText),
		Sector:             strings.TrimSpace(in.Sector),
		InvestmentRequired: strings.TrimSpace(in.InvestmentRequired),
		EstimatedReturns:   strings.TrimSpace(in.EstimatedReturns),
	}
	if pitch.Title == "" || pitch.Summary == "" {
		s.writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:       "Please fix the highlighted fields.",
			FieldErrors: map[string]string{"title": "Title and summary are required.", "summary": "Title and summary are required."},
		})
		return
	}

	err = s.pitches.CreatePitch(ctx, pitch)
	if err != nil {
		s.logger.WithError(err).Error("failed to create pitch in datastore")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, pitch)
}

func (s *Service) handleGetPitch(w http.ResponseWriter, r *http.Request) {
	pitch, ok := s.loadPitch(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, pitch)
}

// loadPitch resolves the :pitchID route parameter, writing the error
// response itself when it cannot.
func (s *Service) loadPitch(w http.ResponseWriter, r *http.Request) (*types.Pitch, bool) {
	pitchID := strings.TrimSpace(r.PathValue("pitchID"))

	pitch, err := s.pitches.Pitch(r.Context(), pitchID)
	if errors.Is(err, types.ErrPitchNotFound) {
		s.writeError(w, http.StatusNotFound, "pitch not found")
		return nil, false
	}
	if err != nil {
		s.logger.WithError(err).WithField("pitch_id", pitchID).Error("failed to load pitch")
		s.internalServerError(w)
		return nil, false
	}

	return pitch, true
}

// loadOwnedPitch is loadPitch restricted to the pitch's author.
func (s *Service) loadOwnedPitch(w http.ResponseWriter, r *http.Request) (*types.Pitch, bool) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.internalServerError(w)
		return nil, false
	}

	pitch, ok := s.loadPitch(w, r)
	if !ok {
		return nil, false
	}

	if pitch.UserID != user.ID {
		// indistinguishable from a missing pitch
		s.writeError(w, http.StatusNotFound, "pitch not found")
		return nil, false
	}

	return pitch, true
}

type uploadURLRequest struct {
	FileName    string `form:"file_name" json:"fileName"`
	ContentType string `form:"content_type" json:"contentType"`
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func pitchUploadPrefix(pitchID string) string {
	return fmt.Sprintf("pitches/%s/", pitchID)
}

func safeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(path.Base(strings.TrimSpace(name)), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	if len(name) > 100 {
		name = name[len(name)-100:]
	}
	return name
}

func (s *Service) handlePostUploadURL(w http.ResponseWriter, r *http.Request) {
	pitch, ok := s.loadOwnedPitch(w, r)
	if !ok {
		return
	}

	var in = new(uploadURLRequest)
	err := decodeBody(r, in)
	if err != nil || strings.TrimSpace(in.FileName) == "" || strings.TrimSpace(in.ContentType) == "" {
		s.writeError(w, http.StatusBadRequest, "file name and content type are required")
		return
	}

	storagePath := pitchUploadPrefix(pitch.ID) + utils.NanoID() + "-" + safeFileName(in.FileName)
	ttl := time.Duration(s.config.SignedURLTTLSec) * time.Second

	url, err := s.uploads.SignedUploadURL(r.Context(), storagePath, in.ContentType, ttl)
	if err != nil {
		s.logger.WithError(err).WithField("path", storagePath).Error("failed to sign upload url")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"path":      storagePath,
		"url":       url,
		"expiresAt": time.Now().Add(ttl).UTC(),
	})
}

type registerFileRequest struct {
	StoragePath string `form:"storage_path" json:"storagePath"`
	FileName    string `form:"file_name" json:"fileName"`
	ContentType string `form:"content_type" json:"contentType"`
	SizeBytes   int64  `form:"size_bytes" json:"sizeBytes"`
}

// handlePostPitchFile records an upload that finished against a signed URL
// and hands it to the intake pipeline. The response does not wait for
// scanning.
func (s *Service) handlePostPitchFile(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	pitch, ok := s.loadOwnedPitch(w, r)
	if !ok {
		return
	}

	var in = new(registerFileRequest)
	err := decodeBody(r, in)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid file payload")
		return
	}

	prefix := pitchUploadPrefix(pitch.ID)
	if !strings.HasPrefix(in.StoragePath, prefix) || strings.Contains(in.StoragePath, "..") || len(in.StoragePath) == len(prefix) {
		s.writeError(w, http.StatusBadRequest, "storage path does not belong to this pitch")
		return
	}

	file := &types.PitchFile{
		PitchID:     pitch.ID,
		StoragePath: in.StoragePath,
		FileName:    strings.TrimSpace(in.FileName),
		ContentType: strings.TrimSpace(in.ContentType),
		SizeBytes:   in.SizeBytes,
	}
	if file.FileName == "" {
		file.FileName = path.Base(in.StoragePath)
	}
	if file.ContentType == "" {
		file.ContentType = "application/octet-stream"
	}

	err = s.pitchFiles.CreatePitchFile(ctx, file)
	if err != nil {
		s.logger.WithError(err).Error("failed to create pitch file in datastore")
		s.internalServerError(w)
		return
	}

	s.dispatcher.Dispatch(ctx, file)

	s.writeJSON(w, http.StatusAccepted, file)
}
