package server

import (
	"errors"
	"io"
	"net/http"

	"venturelink/internal/access"
	"venturelink/pkg/types"
)

// maxConsentBytes bounds the multipart consent form, signature image included.
const maxConsentBytes = 4 << 20

func (s *Service) handleGetNDA(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	pitch, ok := s.loadPitch(w, r)
	if !ok {
		return
	}

	entrepreneurName := (&types.User{}).DisplayName()
	owner, err := s.users.User(ctx, pitch.UserID)
	switch {
	case err == nil:
		entrepreneurName = owner.DisplayName()
	case !errors.Is(err, types.ErrUserNotFound):
		s.logger.WithError(err).Error("failed to load pitch owner")
		s.internalServerError(w)
		return
	}

	granted, err := s.gate.CheckGrantStatus(ctx, user.ID, pitch.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to check grant status")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"granted":   granted,
		"agreement": s.gate.PresentAgreement(pitch, entrepreneurName),
	})
}

type consentErrorResponse struct {
	Error   string               `json:"error"`
	Missing []access.Requirement `json:"missing"`
}

func (s *Service) handlePostNDA(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	pitch, ok := s.loadPitch(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxConsentBytes)
	err = r.ParseMultipartForm(maxConsentBytes)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.writeError(w, http.StatusBadRequest, "invalid consent form")
		return
	}

	sub := &access.ConsentSubmission{
		ViewerID:        user.ID,
		PitchID:         pitch.ID,
		AcceptedClauses: r.Form["clauses"],
		SignatureText:   r.FormValue("signature_text"),
	}

	if r.MultipartForm != nil {
		file, _, ferr := r.FormFile("signature_image")
		if ferr == nil {
			defer file.Close()

			sub.SignatureImage, err = io.ReadAll(file)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "unreadable signature image")
				return
			}
		}
	}

	grant, err := s.gate.SubmitConsent(ctx, sub)
	var verr *access.ValidationError
	if errors.As(err, &verr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, consentErrorResponse{Error: verr.Error(), Missing: verr.Missing})
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to record consent")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, grant)
}

func (s *Service) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	pitch, ok := s.loadPitch(w, r)
	if !ok {
		return
	}

	res, err := s.gate.ResolveProtectedAsset(ctx, user.ID, pitch.ID)
	if err != nil {
		s.logger.WithError(err).Error("failed to resolve protected asset")
		s.internalServerError(w)
		return
	}

	switch res.Status {
	case access.Available:
		s.writeJSON(w, http.StatusOK, res)
	case access.Pending:
		// signed, but nothing published yet
		s.writeJSON(w, http.StatusAccepted, res)
	default:
		s.writeJSON(w, http.StatusForbidden, res)
	}
}
