package server

import (
	"crypto/subtle"
	"errors"
	"io"
	"net/http"
	"strings"

	"venturelink/internal/billing"
	"venturelink/internal/intake"
)

// maxStripePayload matches the size Stripe documents as its upper bound.
const maxStripePayload = 65536

// handlePitchFileHook is the delivery target for pitch file insert events.
// Deliveries are at least once; the processor makes redelivery harmless.
func (s *Service) handlePitchFileHook(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	}

	if s.config.IntakeWebhookSecret == "" {
		s.writeError(w, http.StatusServiceUnavailable, "intake hook is not configured")
		return
	}

	if !s.validIntakeSecret(r) {
		s.writeError(w, http.StatusUnauthorized, "invalid intake secret")
		return
	}

	event, err := intake.ParseEvent(r.Body)
	if err != nil {
		s.logger.WithError(err).Warn("rejecting intake event")
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.processor.Process(r.Context(), event.Record.PitchFile())
	if err != nil {
		s.logger.WithError(err).WithField("file_id", event.Record.ID).Error("intake processing failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if outcome == intake.AlreadyProcessed {
		s.writeJSON(w, http.StatusOK, map[string]string{"message": "Already processed"})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "outcome": outcome})
}

func (s *Service) validIntakeSecret(r *http.Request) bool {
	secret := s.config.IntakeWebhookSecret

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func (s *Service) handleStripeHook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxStripePayload))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	err = s.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, billing.ErrInvalidSignature) {
		s.logger.WithError(err).Warn("rejecting stripe webhook")
		s.writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to apply stripe webhook")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
