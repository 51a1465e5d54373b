package server

import (
	"errors"
	"net/http"
	"strings"

	"venturelink/pkg/types"
)

// matchCandidateLimit caps how many recent pitches are scored per request.
const matchCandidateLimit = 25

func (s *Service) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	sub, err := s.subscriptions.Subscription(ctx, user.ID)
	if err != nil && !errors.Is(err, types.ErrSubscriptionNotFound) {
		s.logger.WithError(err).Error("failed to load subscription")
		s.internalServerError(w)
		return
	}
	if sub == nil || !sub.Active() {
		s.writeError(w, http.StatusPaymentRequired, "an active subscription is required for matches")
		return
	}

	prefs, err := s.preferences.Preference(ctx, user.ID)
	if errors.Is(err, types.ErrPreferencesNotFound) {
		s.writeError(w, http.StatusNotFound, "set your investment preferences first")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load preferences")
		s.internalServerError(w)
		return
	}

	pitches, err := s.pitches.RecentPitches(ctx, matchCandidateLimit)
	if err != nil {
		s.logger.WithError(err).Error("failed to load candidate pitches")
		s.internalServerError(w)
		return
	}

	matches, err := s.matcher.GetAIMatches(ctx, prefs, pitches)
	if err != nil {
		s.logger.WithError(err).Error("failed to compute matches")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Service) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	var pref = new(types.InvestorPreference)
	err = decodeBody(r, pref)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid preferences payload")
		return
	}

	sectors := pref.Sectors[:0]
	for _, sector := range pref.Sectors {
		if sector = strings.TrimSpace(sector); sector != "" {
			sectors = append(sectors, sector)
		}
	}
	pref.Sectors = sectors
	pref.UserID = user.ID

	if len(pref.Sectors) == 0 {
		s.writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:       "Please fix the highlighted fields.",
			FieldErrors: map[string]string{"sectors": "Pick at least one sector."},
		})
		return
	}

	err = s.preferences.UpsertPreference(ctx, pref)
	if err != nil {
		s.logger.WithError(err).Error("failed to store preferences")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, pref)
}

func (s *Service) handlePostCheckout(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()

	user, err := s.userFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	email, _ := ctx.Value(contextKeyEmail).(string)
	if email == "" && user.Email != nil {
		email = *user.Email
	}

	url, err := s.billing.CreateCheckoutSession(ctx, user.ID, email)
	if err != nil {
		s.logger.WithError(err).Error("failed to start checkout")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
