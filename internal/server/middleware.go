package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"venturelink/internal"
	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	contextKeyUser  contextKey = "user"
	contextKeyEmail contextKey = "email"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth resolves the session cookie to a known user and puts the user
// on the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
		if err != nil {
			s.logger.WithError(err).Debug("no access token cookie found")
			s.writeError(w, http.StatusUnauthorized, "login required")
			return
		}

		var accessToken string
		err = s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			s.clearSessionCookie(w)
			s.writeError(w, http.StatusUnauthorized, "login required")
			return
		}

		identity, err := s.authenticator.Authenticate(r.Context(), accessToken)
		if err != nil {
			s.logger.WithError(err).Warn("failed to authenticate access token")
			s.clearSessionCookie(w)
			s.writeError(w, http.StatusUnauthorized, "login required")
			return
		}

		user, err := s.users.User(r.Context(), identity.UserID)
		if errors.Is(err, types.ErrUserNotFound) {
			s.logger.WithField("user_id", identity.UserID).Warn("token subject has no account")
			s.clearSessionCookie(w)
			s.writeError(w, http.StatusUnauthorized, "login required")
			return
		}
		if err != nil {
			s.logger.WithError(err).Error("failed to load user")
			s.internalServerError(w)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		if identity.Email != "" {
			ctx = context.WithValue(ctx, contextKeyEmail, identity.Email)
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"email":   identity.Email,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects users of the other account type and ends their
// session. It must run after RequireAuth.
func (s *Service) RequireRole(role types.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := s.userFromContext(r.Context())
			if err != nil {
				s.writeError(w, http.StatusUnauthorized, "login required")
				return
			}

			if !user.Is(role) {
				s.logger.WithFields(logrus.Fields{
					"user_id":  user.ID,
					"required": role,
				}).Warn("rejecting request from wrong account type")

				s.clearSessionCookie(w)
				s.writeError(w, http.StatusForbidden, types.ErrWrongRole.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}
